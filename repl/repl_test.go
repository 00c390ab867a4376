package repl

import (
	"bytes"
	"testing"

	"github.com/kaleidojit/kjit/session"
	"github.com/stretchr/testify/assert"
)

func TestFormatResult_IntegralValueGetsFractionalSuffix(t *testing.T) {
	assert.Equal(t, "9.0", formatResult(9))
	assert.Equal(t, "0.0", formatResult(0))
}

func TestFormatResult_NonIntegralValueUnchanged(t *testing.T) {
	assert.Equal(t, "0.8414709848078965", formatResult(0.8414709848078965))
}

func TestExecuteWithRecovery_NormalStatementDoesNotRequestExit(t *testing.T) {
	sess := session.NewSession()
	defer sess.Dispose()
	r := NewRepl("", "", "", "", "", "")

	var buf bytes.Buffer
	exit := r.executeWithRecovery(&buf, "4 + 5;", sess)
	assert.False(t, exit)
	assert.Contains(t, buf.String(), "9.0")
}

func TestExecuteWithRecovery_ExitKeywordRequestsExit(t *testing.T) {
	sess := session.NewSession()
	defer sess.Dispose()
	r := NewRepl("", "", "", "", "", "")

	var buf bytes.Buffer
	exit := r.executeWithRecovery(&buf, "exit", sess)
	assert.True(t, exit)
}

func TestExecuteWithRecovery_ParseErrorDoesNotRequestExit(t *testing.T) {
	sess := session.NewSession()
	defer sess.Dispose()
	r := NewRepl("", "", "", "", "", "")

	var buf bytes.Buffer
	exit := r.executeWithRecovery(&buf, ")", sess)
	assert.False(t, exit)
}

func TestQuit_PrintsModuleDumpAndFarewell(t *testing.T) {
	sess := session.NewSession()
	defer sess.Dispose()
	r := NewRepl("", "", "", "", "", "")

	var buf bytes.Buffer
	r.quit(&buf, sess)
	assert.Contains(t, buf.String(), "Good Bye!")
}
