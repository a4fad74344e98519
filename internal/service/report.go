package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"tcg-nakama/internal/config"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/model"
)

// ReportData feeds the daily analytics report email.
type ReportData struct {
	Date             string
	TotalProducts    int
	TotalOrders      int
	TotalGraded      int
	TopProducts      []model.Product
	TopSpenders      []dto.Spender
	TrendingSearches []dto.TrendingSearch
	Candidates       []dto.GradingCandidate
}

type ReportService interface {
	BuildDailyReport(data *ReportData) (string, error)
	Send(subject, htmlBody string) error
}

type reportServiceImpl struct {
	cfg config.SMTP
	now func() time.Time
}

func NewReportService(cfg config.SMTP) ReportService {
	return &reportServiceImpl{
		cfg: cfg,
		now: time.Now,
	}
}

var reportTmpl = template.Must(template.New("daily_report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:'Helvetica Neue',Arial,sans-serif;background:#f5f5f5;margin:0;padding:20px;">
  <div style="max-width:600px;margin:0 auto;background:white;border-radius:12px;overflow:hidden;">
    <div style="background:#0a0a0a;color:white;padding:30px;text-align:center;">
      <h1 style="margin:0;font-size:24px;letter-spacing:2px;">TCG NAKAMA</h1>
      <p style="margin:10px 0 0;opacity:.7;font-size:14px;">Daily Analytics Report · {{.Date}}</p>
    </div>
    <div style="padding:30px;">
      <div style="text-align:center;margin-bottom:30px;">
        <span style="display:inline-block;padding:15px 25px;background:#f8f9fa;border-radius:8px;margin:5px;">
          <b style="font-size:28px;color:#257bf4;">{{.TotalProducts}}</b><br><small>PRODUCTS</small>
        </span>
        <span style="display:inline-block;padding:15px 25px;background:#f8f9fa;border-radius:8px;margin:5px;">
          <b style="font-size:28px;color:#257bf4;">{{.TotalOrders}}</b><br><small>ORDERS</small>
        </span>
        <span style="display:inline-block;padding:15px 25px;background:#f8f9fa;border-radius:8px;margin:5px;">
          <b style="font-size:28px;color:#257bf4;">{{.TotalGraded}}</b><br><small>GRADED</small>
        </span>
      </div>
      <h3>Top 5 Products</h3>
      <table style="width:100%;border-collapse:collapse;font-size:14px;">
        <tr><th align="left">#</th><th align="left">Product</th><th align="left">Price</th></tr>
        {{range $i, $p := .TopProducts}}<tr><td>{{inc $i}}</td><td>{{$p.Title}}</td><td>¥{{$p.Price}}</td></tr>
        {{else}}<tr><td colspan="3" style="color:#888;">No products sold</td></tr>{{end}}
      </table>
      <h3>Top Spenders</h3>
      <table style="width:100%;border-collapse:collapse;font-size:14px;">
        <tr><th align="left">#</th><th align="left">Customer</th><th align="left">Total</th></tr>
        {{range $i, $s := .TopSpenders}}<tr><td>{{inc $i}}</td><td>{{$s.Name}}</td><td>¥{{$s.Total}}</td></tr>
        {{else}}<tr><td colspan="3" style="color:#888;">No customer data</td></tr>{{end}}
      </table>
      <h3>Trending Searches</h3>
      <div>
        {{range .TrendingSearches}}<span style="display:inline-block;background:#f0f0f0;padding:4px 12px;border-radius:20px;margin:4px;">{{.Query}} ({{.Count}})</span>
        {{else}}<span style="color:#888;">No search data yet</span>{{end}}
      </div>
      <h3>Grading Candidates</h3>
      {{range .Candidates}}<p><b style="background:#ffd700;padding:4px 8px;border-radius:4px;font-size:11px;">{{.Score}}%</b> {{.Title}} (Grade: {{.Grade}})</p>
      {{else}}<p style="color:#888;">No candidates yet</p>{{end}}
    </div>
    <div style="background:#f8f9fa;padding:20px;text-align:center;font-size:12px;color:#888;">
      <p>Automated report from the TCG Nakama admin dashboard</p>
    </div>
  </div>
</body>
</html>`))

func (s *reportServiceImpl) BuildDailyReport(data *ReportData) (string, error) {
	if data.Date == "" {
		jst := time.FixedZone("JST", 9*60*60)
		data.Date = s.now().In(jst).Format("2006-01-02")
	}
	if len(data.TopProducts) > 5 {
		data.TopProducts = data.TopProducts[:5]
	}
	if len(data.TopSpenders) > 3 {
		data.TopSpenders = data.TopSpenders[:3]
	}
	if len(data.TrendingSearches) > 5 {
		data.TrendingSearches = data.TrendingSearches[:5]
	}
	if len(data.Candidates) > 3 {
		data.Candidates = data.Candidates[:3]
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

func (s *reportServiceImpl) Send(subject, htmlBody string) error {
	if s.cfg.Email == "" || s.cfg.Password == "" {
		slog.Info("smtp credentials not configured, skipping report email")
		return nil
	}
	recipient := s.cfg.Recipient
	if recipient == "" {
		slog.Info("no report recipient configured, skipping report email")
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.Email,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Email, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, s.cfg.Email, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}

	slog.Info("report email sent", slog.String("recipient", recipient))
	return nil
}
