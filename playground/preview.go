// Package playground composes the documents rendered by the code playground: the live preview,
// the standalone page and the exported file.
package playground

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"text/template"

	"github.com/FlorianRuen/devhub/model"
)

// SandboxPolicy lets the preview run scripts and access its own DOM,
// it never grants top navigation so the preview can't navigate the hosting page
const SandboxPolicy = "allow-scripts allow-same-origin allow-forms allow-popups allow-modals"

// previewErrorHandler is installed before the user script
// returning true stops the error from reaching the host console handler
const previewErrorHandler = `    window.onerror = function(msg, url, lineNo, columnNo, error) {
      console.error('Preview Error:', msg, 'at line', lineNo);
      return true;
    };
`

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ .Title }}</title>
  <style>
{{ .CSS }}
  </style>
</head>
<body>
{{ .HTML }}
  <script>
{{ .ErrorHandler }}{{ .JS }}
  </script>
</body>
</html>
`

var (
	document = template.Must(template.New("document").Parse(documentTemplate))

	closingStyle  = regexp.MustCompile(`(?i)</style`)
	closingScript = regexp.MustCompile(`(?i)</script`)
	whitespaces   = regexp.MustCompile(`\s+`)
)

type documentData struct {
	Title        string
	CSS          string
	HTML         string
	ErrorHandler string
	JS           string
}

// ComposePreview builds the live preview document, with the error handler installed
func ComposePreview(code model.CodeState) string {
	return compose("Live Preview", code, true)
}

// ComposeStandalone builds the document opened in a new tab, without the error handler
func ComposeStandalone(code model.CodeState) string {
	return compose("Live Preview", code, false)
}

// ComposeExport builds the self contained file offered as a download
func ComposeExport(name string, code model.CodeState) string {
	return compose(html.EscapeString(name), code, false)
}

// ExportFileName turns a project name into the exported file name
func ExportFileName(name string) string {
	slug := strings.ToLower(whitespaces.ReplaceAllString(strings.TrimSpace(name), "-"))
	if slug == "" {
		slug = "project"
	}

	return slug + ".html"
}

func compose(title string, code model.CodeState, withErrorHandler bool) string {
	data := documentData{
		Title: title,
		CSS:   closingStyle.ReplaceAllString(code.CSS, `<\/style`),
		HTML:  code.HTML,
		JS:    neutralizeScript(code.JS),
	}

	if withErrorHandler {
		data.ErrorHandler = previewErrorHandler
	}

	var buf bytes.Buffer

	// executing a parsed template over plain strings can only fail on a write error
	// and bytes.Buffer never returns one
	_ = document.Execute(&buf, data)

	return buf.String()
}

// neutralizeScript keeps the user script inside its block
// "<!--" followed by "<script" would switch the parser to the double escaped state and swallow the closing tag
func neutralizeScript(js string) string {
	js = closingScript.ReplaceAllString(js, `<\/script`)
	return strings.ReplaceAll(js, "<!--", `<\!--`)
}
