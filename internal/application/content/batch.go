package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// SourceGenerated 模型生成
	SourceGenerated = "generated"
	// SourceFallback 模板兜底
	SourceFallback = "fallback"
)

// Record 批量内容中的单条变体
type Record struct {
	Headline  string `json:"headline"`
	Body      string `json:"body"`
	CTA       string `json:"cta"`
	Theme     string `json:"theme"`
	Specialty string `json:"specialty"`
	Generated string `json:"generated,omitempty"`
	Source    string `json:"source,omitempty"`
}

// batchTemplate 每个专科的兜底模板
type batchTemplate struct {
	headlines []string
	bodies    []string
	ctas      []string
	themes    []string
}

// batchTemplates 只读兜底模板；未知专科使用 general
var batchTemplates = map[string]batchTemplate{
	"general": {
		headlines: []string{"Medical Care", "Healthcare Services", "Patient Care", "Treatment Options", "Medical Team", "Health Solutions", "Professional Care", "Medical Excellence"},
		bodies: []string{
			"Professional medical services with expert care and advanced technology.",
			"Comprehensive healthcare solutions designed for optimal patient wellness and recovery.",
			"Expert medical care delivered by experienced professionals in modern facilities.",
		},
		ctas:   []string{"Learn More", "Schedule", "Contact", "Get Care", "Book Now"},
		themes: []string{"professional", "comprehensive", "expert", "advanced"},
	},
	"cardiac": {
		headlines: []string{"Heart Care", "Cardiac Services", "Heart Health", "Cardiovascular Care", "Heart Surgery", "Cardiac Excellence"},
		bodies: []string{
			"Expert cardiovascular care with advanced cardiac treatments and technology.",
			"Comprehensive heart health services from leading cardiac specialists.",
			"Advanced cardiac care featuring minimally invasive procedures and expert surgeons.",
		},
		ctas:   []string{"Heart Care", "Cardiac", "Schedule", "Consult"},
		themes: []string{"cardiac", "cardiovascular", "heart", "surgical"},
	},
	"emergency": {
		headlines: []string{"Emergency Care", "24/7 Services", "Urgent Care", "Critical Care", "Trauma Center", "Emergency Medicine"},
		bodies: []string{
			"Round-the-clock emergency medical services with expert trauma care teams.",
			"Immediate emergency care available 24/7 with advanced life-saving technology.",
			"Critical care emergency services with rapid response medical teams.",
		},
		ctas:   []string{"Get Help", "Emergency", "Call Now", "Urgent"},
		themes: []string{"emergency", "urgent", "critical", "trauma"},
	},
	"spine": {
		headlines: []string{"Spine Care", "Back Pain Relief", "Spine Surgery", "Neck Pain Treatment", "Spine Specialists"},
		bodies: []string{
			"Expert spine care combining advanced diagnostics with personalized treatment plans.",
			"Minimally invasive spine procedures that help you recover faster with less pain.",
			"Board-certified spine specialists dedicated to restoring your mobility and comfort.",
		},
		ctas:   []string{"Find Relief", "Schedule", "Consult", "Learn More"},
		themes: []string{"spine", "orthopedic", "recovery", "mobility"},
	},
}

func templateFor(specialty string) batchTemplate {
	if t, ok := batchTemplates[specialty]; ok {
		return t
	}
	return batchTemplates["general"]
}

// FallbackRecords 按模板循环生成 count 条兜底记录；模板循环一轮后标题追加序号后缀
func FallbackRecords(specialty string, count int, now time.Time) []Record {
	if count <= 0 {
		return []Record{}
	}
	t := templateFor(specialty)
	generated := now.UTC().Format(time.RFC3339)

	out := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		headline := t.headlines[i%len(t.headlines)]
		if i >= len(t.headlines) {
			headline = fmt.Sprintf("%s %d", headline, i/len(t.headlines)+1)
		}
		out = append(out, Record{
			Headline:  headline,
			Body:      t.bodies[i%len(t.bodies)],
			CTA:       t.ctas[i%len(t.ctas)],
			Theme:     t.themes[i%len(t.themes)],
			Specialty: specialty,
			Generated: generated,
			Source:    SourceFallback,
		})
	}
	return out
}

var batchArrayRe = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

// ErrNoBatchJSON 模型输出中未找到 JSON 数组
var ErrNoBatchJSON = errors.New("no valid JSON array found in response")

// ParseBatch 提取第一个 [{...}] 数组并解析为记录；缺失的 specialty 用传入值补齐
func ParseBatch(raw, specialty string) ([]Record, error) {
	match := batchArrayRe.FindString(raw)
	if match == "" {
		return nil, ErrNoBatchJSON
	}

	var records []Record
	if err := json.Unmarshal([]byte(match), &records); err != nil {
		return nil, fmt.Errorf("failed to parse content batch json: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoBatchJSON
	}
	for i := range records {
		if strings.TrimSpace(records[i].Specialty) == "" {
			records[i].Specialty = specialty
		}
		if records[i].Source == "" {
			records[i].Source = SourceGenerated
		}
	}
	return records, nil
}
