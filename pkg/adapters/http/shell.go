package http

import "html/template"

// PrebuiltVersion pins the FastUI frontend served by the shell.
const PrebuiltVersion = "0.0.24"

type shellData struct {
	Title   string
	APIRoot string
	Version string
}

var shell = template.Must(template.New("shell").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>{{.Title}}</title>
    <script type="module" crossorigin src="https://cdn.jsdelivr.net/npm/@pydantic/fastui-prebuilt@{{.Version}}/dist/assets/index.js"></script>
    <link rel="stylesheet" crossorigin href="https://cdn.jsdelivr.net/npm/@pydantic/fastui-prebuilt@{{.Version}}/dist/assets/index.css" />
  </head>
  <body>
    <div id="root" data-fastui-api-root-url="{{.APIRoot}}"></div>
  </body>
</html>
`))
