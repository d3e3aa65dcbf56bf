package dashboard

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var pageTemplate = template.Must(template.New("dashboard").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>Battery Health Prediction</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { background: linear-gradient(135deg, #1f77b4 0%, #28a745 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0; font-size: 2.2em; text-align: center; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); gap: 20px; }
        .card { background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .card h3 { margin-top: 0; color: #333; border-bottom: 2px solid #eee; padding-bottom: 10px; }
        .metric { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #eee; }
        .metric:last-child { border-bottom: none; }
        .metric-label { font-weight: 500; color: #666; }
        .metric-value { font-weight: bold; color: #333; }
        .gauge { width: 100%; height: 24px; background: linear-gradient(90deg, #ff4b4b 0 30%, #ffa500 30% 60%, #28a745 60% 100%); border-radius: 12px; position: relative; }
        .needle { position: absolute; top: -6px; width: 4px; height: 36px; background: #1f77b4; }
        .score { font-size: 2.5em; text-align: center; margin: 10px 0; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 6px; border-bottom: 1px solid #eee; }
        th { background-color: #f8f9fa; }
        label { display: block; margin: 8px 0 4px; color: #666; }
        input { width: 100%; padding: 6px; box-sizing: border-box; }
        button { margin-top: 12px; padding: 8px 16px; background: #1f77b4; color: white; border: none; border-radius: 4px; cursor: pointer; }
        .error { color: #dc3545; margin-top: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>Battery Health Prediction</h1></div>
        <div class="grid">
            <div class="card">
                <h3>Sensor Reading</h3>
                <form id="reading">
                    <label>Voltage (V)</label><input name="voltage" type="number" step="0.1" value="48.0">
                    <label>Current (A)</label><input name="current" type="number" step="0.1" value="2.0">
                    <label>Temperature (°C)</label><input name="temperature" type="number" step="0.1" value="30.0">
                    <button type="submit">Predict Health</button>
                    <div class="error" id="error"></div>
                </form>
            </div>
            <div class="card">
                <h3>Current Status</h3>
                <div class="score" id="score">--</div>
                <div class="gauge"><div class="needle" id="needle" style="left: 0%"></div></div>
                <div class="metric"><span class="metric-label">Suitability</span><span class="metric-value" id="suitability">--</span></div>
                <div class="metric"><span class="metric-label">Estimated Life</span><span class="metric-value" id="life">--</span></div>
                <div class="metric"><span class="metric-label">Recommended Load</span><span class="metric-value" id="load">--</span></div>
                <div class="metric"><span class="metric-label">Usage</span><span class="metric-value" id="usage">--</span></div>
            </div>
            <div class="card">
                <h3>Report</h3>
                {{range .Formats}}<a href="/api/report?format={{.}}">Download {{.}}</a><br>{{end}}
            </div>
        </div>
        <div class="card" style="margin-top: 20px;">
            <h3>Prediction History</h3>
            <table>
                <thead><tr><th>Time</th><th>Health %</th><th>Est. Life</th><th>Rec. Load</th></tr></thead>
                <tbody id="history"></tbody>
            </table>
        </div>
    </div>

    <script>
        const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
        ws.onmessage = function(event) { render(JSON.parse(event.data).charts); };
        ws.onclose = function() { setTimeout(() => location.reload(), 5000); };

        document.getElementById('reading').onsubmit = async function(e) {
            e.preventDefault();
            const f = new FormData(e.target);
            const body = {};
            for (const [k, v] of f.entries()) { body[k] = parseFloat(v); }
            const resp = await fetch('/api/predict', { method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body) });
            document.getElementById('error').textContent = resp.ok ? '' : (await resp.json()).error;
        };

        function render(charts) {
            if (!charts.status) { return; }
            const s = charts.status;
            document.getElementById('score').textContent = s.score.toFixed(2) + '%';
            document.getElementById('needle').style.left = Math.max(0, Math.min(100, s.score)) + '%';
            document.getElementById('suitability').textContent = s.suitability;
            document.getElementById('life').textContent = s.remainingLife;
            document.getElementById('load').textContent = s.recommendedLoad;
            document.getElementById('usage').textContent = s.usage;

            const tbody = document.getElementById('history');
            tbody.innerHTML = '';
            charts.bars.forEach(function(b) {
                const row = document.createElement('tr');
                [b.label, b.score + '%', b.remainingLife, b.recommendedLoad].forEach(function(text) {
                    const td = document.createElement('td');
                    td.textContent = text;
                    row.appendChild(td);
                });
                tbody.appendChild(row);
            });
        }
    </script>
</body>
</html>
`))

func (d *Dashboard) handlePage(w http.ResponseWriter, r *http.Request) {
	var formats []string
	if d.exporter != nil {
		formats = d.exporter.Formats()
	}

	w.Header().Set("Content-Type", "text/html")
	if err := pageTemplate.Execute(w, struct{ Formats []string }{formats}); err != nil {
		log.Error().Err(err).Msg("Failed to render dashboard page")
	}
}
