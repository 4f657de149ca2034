package digest

import "html/template"

var pageTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        .tier { margin: 30px 0; }
        .tier-header { font-size: 24px; font-weight: bold; margin-bottom: 15px; padding-bottom: 10px; border-bottom: 2px solid #ddd; }
        .tier1 { color: #d4af37; }
        .tier2 { color: #0066cc; }
        .tier3 { color: #666; }
        .job { margin-bottom: 20px; padding: 15px; border: 1px solid #ddd; border-radius: 5px; background: #f9f9f9; }
        .company { font-weight: bold; font-size: 18px; color: #0066cc; }
        .title { font-size: 16px; margin: 5px 0; }
        .info { color: #666; margin: 3px 0; }
        .link { margin-top: 10px; }
        a { color: #0066cc; text-decoration: none; }
    </style>
</head>
<body>
    <h1>🎯 {{.Heading}}</h1>
    <p><strong>{{.Total}} jobs</strong> from public companies | Generated on {{.Generated}}</p>
{{- range .Tiers}}
    <div class="tier">
        <div class="tier-header {{.Class}}">{{.Label}} ({{len .Jobs}} jobs)</div>
{{- range $i, $job := .Jobs}}
        <div class="job">
            <div class="company">{{inc $i}}. {{$job.Company}}</div>
            <div class="title">{{or $job.Title "Job Opportunity"}}</div>
            <div class="info">💰 Pay Range: {{or $job.Compensation "Not specified"}}</div>
            <div class="info">📍 Location: {{or $job.Location "Not specified"}}</div>
            <div class="link">
                <a href="{{$job.URL}}">View Job Posting →</a>
            </div>
        </div>
{{- end}}
    </div>
{{- end}}
</body>
</html>
`))
