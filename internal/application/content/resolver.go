package content

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	minLineValueRunes = 5
	maxLineValueRunes = 200
)

// requiredKeys 严格 JSON 阶段要求同时出现的字段
var requiredKeys = [...]string{"headlines", "descriptions", "ctas"}

// keywordGroups 启发式阶段的关键词分组，顺序对应 headlines/descriptions/ctas
var keywordGroups = [3][]string{
	{"headline", "title", "header"},
	{"description", "summary", "content"},
	{"cta", "call-to-action", "button", "action"},
}

// Resolve 将模型原始输出转换为结构化内容，永不失败。
// 阶段依次为：严格 JSON -> 按行启发式提取 -> 按 context 分桶兜底。
// 任一字段为空时用兜底分桶的对应序列补齐。
func Resolve(raw, context string) Resolution {
	topic := ResolveTopic(context)

	extracted, outcome := resolveStrictJSON(raw)
	if outcome != Matched {
		extracted, outcome = resolveHeuristic(raw)
	}

	return Resolution{
		Content: fillFromFallback(extracted, topic),
		Outcome: outcome,
		Topic:   topic,
	}
}

// resolveStrictJSON 截取第一个括号平衡的 {...} 并解析；三个字段都存在时返回 Matched
func resolveStrictJSON(raw string) (StructuredContent, ParseOutcome) {
	block, ok := firstBalancedObject(raw)
	if !ok {
		return StructuredContent{}, NoMatch
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return StructuredContent{}, NoMatch
	}
	for _, key := range requiredKeys {
		if _, present := fields[key]; !present {
			return StructuredContent{}, NoMatch
		}
	}

	// 字段存在但不是字符串数组时不视为命中
	var out StructuredContent
	targets := [...]*[]string{&out.Headlines, &out.Descriptions, &out.CTAs}
	for i, key := range requiredKeys {
		if err := json.Unmarshal(fields[key], targets[i]); err != nil {
			return StructuredContent{}, NoMatch
		}
	}
	return out, Matched
}

// firstBalancedObject 从第一个 '{' 开始按括号深度截取完整对象，忽略字符串内的括号
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// resolveHeuristic 逐行扫描关键词，收集最后一个冒号或连字符之后的内容
func resolveHeuristic(raw string) (StructuredContent, ParseOutcome) {
	var groups [3][]string
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		for g, keywords := range keywordGroups {
			if !containsAny(lower, keywords) {
				continue
			}
			if value, ok := trailingValue(line); ok {
				groups[g] = append(groups[g], value)
			}
		}
	}

	out := StructuredContent{Headlines: groups[0], Descriptions: groups[1], CTAs: groups[2]}
	if out.isEmpty() {
		return out, NoMatch
	}
	return out, PartialMatch
}

// trailingValue 取行内最后一个 ':' 或 '-' 之后的文本，去空白与引号后长度需在 (5, 200) 之间
func trailingValue(line string) (string, bool) {
	value := line
	if idx := strings.LastIndexAny(line, ":-"); idx >= 0 {
		value = line[idx+1:]
	}
	value = strings.TrimSpace(value)
	value = strings.Trim(value, "\"'`,")
	value = strings.TrimSpace(value)

	n := utf8.RuneCountInString(value)
	if n <= minLineValueRunes || n >= maxLineValueRunes {
		return "", false
	}
	return value, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// fillFromFallback 用兜底分桶补齐空序列
func fillFromFallback(c StructuredContent, topic Topic) StructuredContent {
	if c.Complete() {
		return c
	}
	fb := FallbackFor(topic)
	if len(c.Headlines) == 0 {
		c.Headlines = fb.Headlines
	}
	if len(c.Descriptions) == 0 {
		c.Descriptions = fb.Descriptions
	}
	if len(c.CTAs) == 0 {
		c.CTAs = fb.CTAs
	}
	return c
}
