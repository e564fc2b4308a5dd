package clicmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.cin")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestRunExecutesSourceFile(t *testing.T) {
	path := writeSource(t, `print 1 + 2;`)

	var out, errOut bytes.Buffer
	c := &Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "3\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunReportsRuntimeError(t *testing.T) {
	path := writeSource(t, `print 1 + "two";`)

	var out, errOut bytes.Buffer
	c := &Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "Operands must be either 2 numbers or 2 strings.")
}

func TestCompileReportsOkForValidSource(t *testing.T) {
	path := writeSource(t, `var x = 1;`)

	var out, errOut bytes.Buffer
	c := &Cmd{}
	err := c.Compile(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ok")
}

func TestCompileReportsCompileError(t *testing.T) {
	path := writeSource(t, `var = ;`)

	var out, errOut bytes.Buffer
	c := &Cmd{}
	err := c.Compile(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.Error(t, err)
	assert.NotEmpty(t, errOut.String())
}

func TestDisassembleListsOpcodes(t *testing.T) {
	path := writeSource(t, `print 1 + 2;`)

	var out, errOut bytes.Buffer
	c := &Cmd{}
	err := c.Disassemble(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "OP_ADD")
	assert.Contains(t, out.String(), "OP_PRINT")
}

func TestMainPrintsVersion(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &Cmd{BuildVersion: "9.9.9", BuildDate: "2026-01-01"}
	code := c.Main([]string{"cinder", "--version"}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "9.9.9")
}

func TestMainRejectsUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"cinder", "bogus"}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	assert.Equal(t, mainer.InvalidArgs, code)
}
