// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

// recordLayout renders a record whose type has no template page.
const recordLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.SiteName}}</title>
</head>
<body class="lw-{{.Type}}">
<article>
<header><h1>{{.Title}}</h1></header>
{{- if .Fields}}
<dl class="lw-fields">
{{- range .Fields}}
<dt>{{.Label}}</dt>
<dd data-lw-field="{{.Name}}">{{if .Image}}{{if .Value}}<img src="{{.Value}}" alt="{{.Label}}">{{end}}{{else}}{{.Value}}{{end}}</dd>
{{- end}}
</dl>
{{- end}}
<div class="lw-body">{{.Body}}</div>
</article>
</body>
</html>
`

// archiveLayout renders the listing of a type with an archive.
const archiveLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.SiteName}}</title>
</head>
<body class="lw-archive lw-{{.Type}}">
<h1>{{.Title}}</h1>
{{- if .Items}}
<ul>
{{- range .Items}}
<li><a href="{{.Link}}">{{.Title}}</a></li>
{{- end}}
</ul>
{{- else}}
<p>Nothing published yet.</p>
{{- end}}
<nav class="lw-pages">
{{- if .Prev}}<a rel="prev" href="?page={{.Prev}}">Newer</a>{{end}}
{{- if .Next}}<a rel="next" href="?page={{.Next}}">Older</a>{{end}}
</nav>
</body>
</html>
`
