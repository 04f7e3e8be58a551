package content

import "strings"

// topicFallbacks 进程级只读兜底内容表
var topicFallbacks = map[Topic]StructuredContent{
	TopicSpine: {
		Headlines: []string{
			"Advanced Spine Care",
			"Minimally Invasive Procedures",
			"Personalized Recovery Plans",
		},
		Descriptions: []string{
			"Expert diagnosis and treatment for back and neck pain from board-certified spine specialists.",
			"Smaller incisions, less pain and faster return to the activities you love.",
			"Physical therapy and follow-up care designed around your goals and your schedule.",
		},
		CTAs: []string{"Schedule Consultation", "Find a Specialist", "Learn More"},
	},
	TopicCardiac: {
		Headlines: []string{
			"Heart Care You Can Trust",
			"Advanced Cardiac Diagnostics",
			"Cardiac Rehabilitation",
		},
		Descriptions: []string{
			"Comprehensive cardiovascular care from leading cardiologists and cardiac surgeons.",
			"State-of-the-art imaging and testing to detect heart conditions early.",
			"Supervised recovery programs that help you build strength and confidence.",
		},
		CTAs: []string{"Book a Heart Screening", "Meet Our Cardiologists", "Learn More"},
	},
	TopicGeneral: {
		Headlines: []string{
			"Healthcare That Puts You First",
			"Expert Medical Team",
			"Comprehensive Services",
		},
		Descriptions: []string{
			"Professional medical services with expert care and advanced technology.",
			"Experienced physicians and specialists dedicated to your wellbeing.",
			"From preventive care to advanced treatment, everything you need in one place.",
		},
		CTAs: []string{"Schedule Appointment", "Find a Doctor", "Learn More"},
	},
}

// ResolveTopic 按子串匹配 context 选择兜底分桶：spine 优先，其次 heart/cardiac，否则 general
func ResolveTopic(context string) Topic {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "spine"):
		return TopicSpine
	case strings.Contains(lower, "heart"), strings.Contains(lower, "cardiac"):
		return TopicCardiac
	default:
		return TopicGeneral
	}
}

// FallbackFor 返回指定分桶的兜底内容副本；未知分桶返回 general
func FallbackFor(topic Topic) StructuredContent {
	c, ok := topicFallbacks[topic]
	if !ok {
		c = topicFallbacks[TopicGeneral]
	}
	return c.Clone()
}
