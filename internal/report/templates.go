package report

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

var markdownTmpl = texttemplate.Must(texttemplate.New("markdown").Parse(`# Character Analysis Report: {{.Analysis.Filename}}

## Document Information
- **Filename**: {{.Analysis.Filename}}
- **Processed**: {{.Processed}}
- **Total Sentences**: {{.Analysis.SentenceCount}}

## Characters Detected

Total: {{len .Analysis.Characters}}

{{range .Analysis.Characters}}- **{{.Name}}**: {{.MentionCount}} mentions
{{end}}
## Character Traits
{{range .Sections}}
### {{.Name}}
{{range .Categories}}
**{{.Category}}**: {{.Traits}}
{{end}}{{if .Frequent}}
**Most Frequent Traits**:
{{range .Frequent}}- {{.Trait}} ({{.Count}}x)
{{end}}{{end}}{{end}}
## Character Relations

Total Relations: {{len .Analysis.Relations}}

{{range .Analysis.Relations}}### {{.CharacterA}} and {{.CharacterB}}
- **Primary Relation**: {{if .PrimaryRelation}}{{.PrimaryRelation}}{{else}}unknown{{end}}
- **Relation Types**: {{range $i, $t := .RelationTypes}}{{if $i}}, {{end}}{{$t}}{{end}}
- **Co-occurrence**: {{.Cooccurrence}} times
- **Strength**: {{printf "%.2f" .Strength}}
- **Confidence**: {{printf "%.2f" .Confidence}}

{{end}}`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Character Analysis: {{.Analysis.Filename}}</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            padding: 30px;
            border-radius: 10px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        h1 {
            color: #2c3e50;
            border-bottom: 3px solid #3498db;
            padding-bottom: 10px;
        }
        h2 {
            color: #34495e;
            margin-top: 30px;
        }
        .stat-box {
            display: inline-block;
            background-color: #ecf0f1;
            padding: 15px 25px;
            margin: 10px;
            border-radius: 5px;
            border-left: 4px solid #3498db;
        }
        .character-card {
            background-color: #f8f9fa;
            padding: 15px;
            margin: 10px 0;
            border-radius: 5px;
            border-left: 4px solid #2ecc71;
        }
        .trait-badge {
            display: inline-block;
            background-color: #3498db;
            color: white;
            padding: 5px 10px;
            margin: 3px;
            border-radius: 3px;
            font-size: 0.9em;
        }
        .relation-card {
            background-color: #fff3cd;
            padding: 15px;
            margin: 10px 0;
            border-radius: 5px;
            border-left: 4px solid #ffc107;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Character Analysis Report</h1>
        <h2>{{.Analysis.Filename}}</h2>

        <div class="stat-box">
            <strong>Total Sentences:</strong> {{.Analysis.SentenceCount}}
        </div>
        <div class="stat-box">
            <strong>Characters Found:</strong> {{len .Analysis.Characters}}
        </div>
        <div class="stat-box">
            <strong>Relations Found:</strong> {{len .Analysis.Relations}}
        </div>

        <h2>Main Characters</h2>
{{range .Sections}}
        <div class="character-card">
            <h3>{{.Name}}</h3>
            <p><strong>Mentions:</strong> {{.Mentions}}</p>
{{if .Badges}}            <p><strong>Traits:</strong><br>
{{range .Badges}}                <span class="trait-badge">{{.}}</span>
{{end}}            </p>
{{end}}        </div>
{{end}}
        <h2>Character Relations</h2>
{{range .Analysis.Relations}}
        <div class="relation-card">
            <h4>{{.CharacterA}} and {{.CharacterB}}</h4>
            <p>
                <strong>Primary Relation:</strong> {{if .PrimaryRelation}}{{.PrimaryRelation}}{{else}}unknown{{end}}<br>
                <strong>Relation Types:</strong> {{range $i, $t := .RelationTypes}}{{if $i}}, {{end}}{{$t}}{{end}}<br>
                <strong>Co-occurrence:</strong> {{.Cooccurrence}} times<br>
                <strong>Strength:</strong> {{printf "%.2f" .Strength}}<br>
                <strong>Confidence:</strong> {{printf "%.2f" .Confidence}}
            </p>
        </div>
{{end}}
    </div>
</body>
</html>
`))
