package site

import (
	"html/template"

	"github.com/okian/formpost/internal/submitter"
)

// field is one labelled input on the page.
type field struct {
	ID    string
	Label string
	Type  string
	Value string
}

// pageData feeds pageTemplate.
type pageData struct {
	FormID   string
	StatusID string
	Fields   []field
	Status   *pageStatus
}

var labels = map[string]string{ //nolint:gochecknoglobals // static page copy
	submitter.FieldName:                 "Name",
	submitter.FieldEmail:                "Email",
	submitter.FieldPhone:                "Phone",
	submitter.FieldAddress:              "Address",
	submitter.FieldProgrammingLanguages: "Programming languages",
	submitter.FieldTools:                "Tools",
}

var inputTypes = map[string]string{ //nolint:gochecknoglobals // static page copy
	submitter.FieldEmail: "email",
	submitter.FieldPhone: "tel",
}

func newPageData(form submitter.Form, status *pageStatus) pageData {
	fields := make([]field, 0, len(submitter.Fields))
	for _, id := range submitter.Fields {
		typ := inputTypes[id]
		if typ == "" {
			typ = "text"
		}
		f := field{ID: id, Label: labels[id], Type: typ}
		if form != nil {
			f.Value = form.FieldValue(id)
		}
		fields = append(fields, f)
	}
	return pageData{
		FormID:   submitter.FormID,
		StatusID: submitter.StatusElementID,
		Fields:   fields,
		Status:   status,
	}
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML)) //nolint:gochecknoglobals // parsed once

const pageHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>Application form</title>
    <style>
      body{font-family:sans-serif;max-width:32rem;margin:2rem auto}
      label{display:block;margin-top:.75rem}
      input{width:100%;padding:.4rem}
      button{margin-top:1rem;padding:.5rem 1rem}
    </style>
  </head>
  <body>
    <h1>Application form</h1>
    <form id="{{.FormID}}" method="post" action="/">
      {{- range .Fields}}
      <label for="{{.ID}}">{{.Label}}</label>
      <input id="{{.ID}}" name="{{.ID}}" type="{{.Type}}" value="{{.Value}}">
      {{- end}}
      <button type="submit">Submit</button>
    </form>
    {{- with .Status}}
    <p id="{{$.StatusID}}" aria-live="polite" style="color: {{.Style.Color}}{{if .Style.Bold}}; font-weight: bold{{end}}">{{.Text}}</p>
    {{- else}}
    <p id="{{.StatusID}}" aria-live="polite"></p>
    {{- end}}
  </body>
</html>
`
