package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/remap/pkg/remap"
	"github.com/randalmurphal/remap/pkg/remap/drop"
	"github.com/randalmurphal/remap/pkg/remap/event"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

const routeProgram = `
variables:
  count: integer
  threshold:
    type: integer
    value: 100
expr:
  if:
    predicate: {op: [">", {var: count}, {var: threshold}]}
    then: [{lit: "high"}]
    else: [{lit: "low"}]
`

// writeFile drops content into dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "remap", cmd.Use)

	for _, name := range []string{"check", "run", "repl"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, sub.Name())
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestCheckCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "route.yaml", routeProgram)

	buf := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"check", path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "ok")
	assert.Contains(t, output, "result string")
	assert.Contains(t, output, "var count integer")
	assert.Contains(t, output, "var threshold integer = 100")
}

func TestCheckCommand_Errors(t *testing.T) {
	src := `
variables:
  food: string
expr: {var: foo}
`
	path := writeFile(t, t.TempDir(), "bad.yaml", src)

	buf := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"check", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error(s)")

	output := buf.String()
	assert.Contains(t, output, "error[E701]")
	assert.Contains(t, output, "call to undefined variable")
	assert.Contains(t, output, `did you mean "food"?`)
}

func TestCheckCommand_Warnings(t *testing.T) {
	src := `
variables:
  count: integer
  count: string
expr: {var: count}
`
	path := writeFile(t, t.TempDir(), "dup.yaml", src)

	buf := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"check", path})

	// Warnings alone do not fail the check.
	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "warning[E205]")
	assert.Contains(t, output, "ok")
}

func TestCheckCommand_MissingFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read program")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "route.yaml", routeProgram)
	input := writeFile(t, dir, "events.ndjson",
		`{"count": 150}`+"\n"+
			`{"count": 7}`+"\n"+
			`{"count": "oops"}`+"\n")
	output := filepath.Join(dir, "out.ndjson")

	stderr := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"run", prog, "-i", input, "-o", output})

	require.NoError(t, cmd.Execute())

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	dec := event.NewDecoder(f)
	var values []value.Value
	for {
		evt, err := dec.Decode()
		if err != nil {
			break
		}
		v, ok := evt.Field("value")
		require.True(t, ok)
		values = append(values, v)
	}
	require.Len(t, values, 2)
	assert.True(t, value.String("high").Equal(values[0]))
	assert.True(t, value.String("low").Equal(values[1]))

	logs := stderr.String()
	assert.Contains(t, logs, "program compiled")
	assert.Contains(t, logs, "stream complete")
	assert.Contains(t, logs, "events_read=3")
	assert.Contains(t, logs, "events_written=2")
	assert.Contains(t, logs, "events_dropped=1")
}

func TestRunCommand_StdinStdout(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "route.yaml", routeProgram)

	stdout := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(`{"count": 250}` + "\n"))
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", prog})

	require.NoError(t, cmd.Execute())

	evt, err := event.NewDecoder(stdout).Decode()
	require.NoError(t, err)
	v, ok := evt.Field("value")
	require.True(t, ok)
	assert.True(t, value.String("high").Equal(v))
}

func TestRunCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "route.yaml", routeProgram)
	cfg := writeFile(t, dir, "pipeline.yaml",
		"program: "+prog+"\nbatch_size: 2\n")

	stdout := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(`{"count": 1}` + "\n" + `{"count": 500}` + "\n" + `{"count": 2}` + "\n"))
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--config", cfg})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 3, strings.Count(stdout.String(), "\n"))
}

func TestRunCommand_InvalidSettings(t *testing.T) {
	prog := writeFile(t, t.TempDir(), "route.yaml", routeProgram)

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", prog, "--drop-store", "s3"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown drop_store")
}

func TestRunCommand_NoProgram(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no program")
}

func TestRunCommand_SQLiteDrops(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "route.yaml", routeProgram)
	dropPath := filepath.Join(dir, "drops.db")

	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(`{"count": "oops"}` + "\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", prog, "--drop-store", "sqlite", "--drop-path", dropPath})

	require.NoError(t, cmd.Execute())

	store, err := drop.NewSQLiteStore(dropPath)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Reason, `variable "count"`)
}

func TestReplHelpers(t *testing.T) {
	program, diags := remap.Compile([]byte(routeProgram))
	require.False(t, diags.HasErrors())

	t.Run("help", func(t *testing.T) {
		buf := &bytes.Buffer{}
		assert.False(t, replCommand(buf, program, ":help"))
		assert.Contains(t, buf.String(), "Commands:")
	})

	t.Run("quit", func(t *testing.T) {
		assert.True(t, replCommand(&bytes.Buffer{}, program, ":quit"))
		assert.True(t, replCommand(&bytes.Buffer{}, program, ":exit"))
	})

	t.Run("type", func(t *testing.T) {
		buf := &bytes.Buffer{}
		replCommand(buf, program, ":type")
		assert.Equal(t, "string\n", buf.String())
	})

	t.Run("vars", func(t *testing.T) {
		buf := &bytes.Buffer{}
		replCommand(buf, program, ":vars")
		assert.Contains(t, buf.String(), "count integer")
		assert.Contains(t, buf.String(), "threshold integer = 100")
	})

	t.Run("program", func(t *testing.T) {
		buf := &bytes.Buffer{}
		replCommand(buf, program, ":program")
		assert.Contains(t, buf.String(), "if count > threshold")
	})

	t.Run("unknown", func(t *testing.T) {
		buf := &bytes.Buffer{}
		assert.False(t, replCommand(buf, program, ":nope"))
		assert.Contains(t, buf.String(), "unknown command")
	})
}

func TestEvalLine(t *testing.T) {
	program, diags := remap.Compile([]byte(routeProgram))
	require.False(t, diags.HasErrors())

	t.Run("resolves", func(t *testing.T) {
		buf := &bytes.Buffer{}
		evalLine(buf, program, `{"count": 150}`)
		assert.Equal(t, "\"high\"\n", buf.String())
	})

	t.Run("fault", func(t *testing.T) {
		buf := &bytes.Buffer{}
		evalLine(buf, program, `{"count": true}`)
		assert.Contains(t, buf.String(), "fault:")
	})

	t.Run("invalid json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		evalLine(buf, program, `{broken`)
		assert.Contains(t, buf.String(), "input:")
	})

	t.Run("non-object", func(t *testing.T) {
		buf := &bytes.Buffer{}
		evalLine(buf, program, `[1, 2]`)
		assert.Contains(t, buf.String(), "JSON object")
	})
}
