// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

const reportTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>招标信息报告 {{.GeneratedAt}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; margin: 24px; color: #222; }
h1 { font-size: 22px; }
h2 { font-size: 17px; margin-top: 28px; border-bottom: 1px solid #ddd; padding-bottom: 4px; }
table { border-collapse: collapse; width: 100%; margin-top: 8px; }
th, td { border: 1px solid #ddd; padding: 6px 8px; font-size: 13px; text-align: left; }
th { background: #f5f5f5; }
.summary td { border: none; padding: 2px 12px 2px 0; }
.kw { color: #1a6fb0; }
a { color: #1a6fb0; text-decoration: none; }
</style>
</head>
<body>
<h1>招标信息报告</h1>
<p>生成时间: {{.GeneratedAt}}</p>

<h2>统计</h2>
<table class="summary">
<tr><td>总数</td><td>{{.Stats.Total}}</td></tr>
{{range $src, $n := .Stats.BySource}}<tr><td>来源 {{$src}}</td><td>{{$n}}</td></tr>
{{end}}{{range $ind, $n := .Stats.ByIndustry}}<tr><td>行业 {{$ind}}</td><td>{{$n}}</td></tr>
{{end}}</table>

<h2>公告明细</h2>
<table>
<tr><th>标题</th><th>来源</th><th>发布日期</th><th>采购人</th><th>预算</th><th>截止时间</th><th>关键词</th></tr>
{{range .Records}}<tr>
<td><a href="{{.URL}}">{{.Title}}</a></td>
<td>{{.Source}}</td>
<td>{{fmtDate .PublishDate}}</td>
<td>{{.Purchaser}}</td>
<td>{{fmtBudget .Budget}}</td>
<td>{{fmtDate .Deadline}}</td>
<td class="kw">{{range $i, $k := .MatchedKeywords}}{{if $i}}, {{end}}{{$k}}{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>
`
