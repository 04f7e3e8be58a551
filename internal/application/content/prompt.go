package content

import (
	"fmt"
	"strings"
)

// DefaultContext context 为空时使用的标签
const DefaultContext = "general"

// StructuredJSONExample 要求模型返回的 JSON 结构示例
const StructuredJSONExample = `{
  "headlines": ["Main headline", "Secondary headline 1", "Secondary headline 2"],
  "descriptions": ["Description for the main section", "Description for section 2", "Description for section 3"],
  "ctas": ["Call to action 1", "Call to action 2", "Call to action 3"]
}`

// BuildStructuredPrompt 构造结构化内容提示词；纯函数，任何输入均可接受
func BuildStructuredPrompt(prompt, context string) string {
	if strings.TrimSpace(context) == "" {
		context = DefaultContext
	}

	var b strings.Builder
	b.WriteString("You are an expert healthcare marketing copywriter creating professional, patient-focused content for a design component library.\n\n")
	fmt.Fprintf(&b, "Context: %s\n", context)
	fmt.Fprintf(&b, "Request: %s\n\n", prompt)
	b.WriteString("Create content with the following structure:\n")
	b.WriteString("- 1 main headline and 2-3 secondary headlines\n")
	b.WriteString("- A short description for each section (one per headline, in the same order)\n")
	b.WriteString("- 3-4 call-to-action phrases (1-3 words each)\n\n")
	b.WriteString("Respond with JSON only, in exactly this format:\n")
	b.WriteString(StructuredJSONExample)
	return b.String()
}

// BuildBatchPrompt 构造某专科的批量内容提示词，要求返回 n 条 JSON 数组元素
func BuildBatchPrompt(specialty string, n int) string {
	return fmt.Sprintf(`You are a healthcare content strategist creating diverse, professional content for a %[1]s healthcare component library.

Generate %[2]d unique healthcare content variations. Each must be completely different and professional.

REQUIREMENTS:
- Headlines: 2-5 words, compelling and specific
- Descriptions: 8-18 words, engaging and informative
- CTAs: 1-3 words, action-oriented
- NO repetitive content - every piece must be unique
- Focus on %[1]s specialty when relevant
- Professional medical tone
- Patient-focused messaging

RESPOND WITH JSON ARRAY ONLY:
[
  {"headline": "Emergency Care", "body": "24/7 critical care with expert medical teams ready for any situation.", "cta": "Get Help", "theme": "emergency", "specialty": "%[1]s"},
  {"headline": "Wellness Programs", "body": "Comprehensive preventive health services designed to keep you feeling your absolute best.", "cta": "Join Today", "theme": "wellness", "specialty": "%[1]s"}
]

Generate %[2]d completely unique variations with maximum diversity!`, specialty, n)
}
