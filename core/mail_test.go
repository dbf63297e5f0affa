package core

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	errors []string
}

func (l *testLogger) Debug(string, ...interface{})          {}
func (l *testLogger) Info(string, ...interface{})           {}
func (l *testLogger) Warn(string, ...interface{})           {}
func (l *testLogger) Error(msg string, _ ...interface{})    { l.errors = append(l.errors, msg) }
func (l *testLogger) Fatal(msg string, args ...interface{}) { l.Error(msg, args...) }

func TestEmailMessage_Attach(t *testing.T) {
	var msg EmailMessage
	pdf := "%PDF-1.3 fake document"

	require.NoError(t, msg.Attach(strings.NewReader(pdf), "transcript.pdf", "application/pdf"))
	require.NoError(t, msg.Attach(strings.NewReader("plain"), "notes.txt"))

	require.Len(t, msg.Attachments, 2)
	assert.True(t, msg.HasAttachments())

	at := msg.Attachments[0]
	assert.Equal(t, "transcript.pdf", at.Filename)
	assert.Equal(t, "application/pdf", at.ContentType)
	decoded, err := base64.StdEncoding.DecodeString(at.Content.String())
	require.NoError(t, err)
	assert.Equal(t, pdf, string(decoded))

	assert.Equal(t, "text/plain; charset=utf-8", msg.Attachments[1].ContentType)
}

func TestEmailMessage_Render(t *testing.T) {
	logger := new(testLogger)
	ParseEmailTemplates(logger)
	require.Empty(t, logger.errors)

	conf := &Config{AppName: "Shule", FrontendBaseURL: "http://front.test"}
	msg := &EmailMessage{
		TemplateName: "transcript",
		TemplateData: struct {
			Name         string
			CoursesCount int
			Score        float64
		}{Name: "Ada Obi", CoursesCount: 2, Score: 70},
	}
	require.NoError(t, msg.Render(conf))

	assert.Contains(t, msg.TextContent, "Hello Ada Obi")
	assert.Contains(t, msg.TextContent, "average score 70.00")
	assert.Contains(t, msg.TextContent, "http://front.test")
	assert.Contains(t, msg.HTMLContent, "<p>Hello Ada Obi,</p>")
	assert.True(t, msg.HasContent())
}

func TestEmailMessage_RenderBodyStr(t *testing.T) {
	msg := &EmailMessage{BodyStr: "hi"}
	require.NoError(t, msg.Render(&Config{}))
	assert.Equal(t, "hi", msg.TextContent)
	assert.Empty(t, msg.HTMLContent)
}
