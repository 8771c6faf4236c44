package prompt

import (
	"fmt"
	"strings"
)

// DefaultMarker precedes the answer in generated text. Extraction splits on
// this exact literal, so it must not appear anywhere else in a prompt.
const DefaultMarker = "[转换结果]"

const emptyContextPlaceholder = "无"

const taskDescription = `[智能拼音转换系统]

任务说明：
将连续拼音字符串精准转换为符合语境的中文文本。要求：
1. 正确切分拼音片段（无空格分隔）
2. 精确进行音节切分（如"zhongguoren" → "zhong guo ren"）
3. 准确处理多音字（如"行xíng/háng"）
4. 保持语义连贯性

转换规则：
- 输入格式：纯字母字符串（如"woaini"）
- 输出格式：完整词句
- 优先选择常用词组
- 保持原文长度一致
- 不需要任何多余的解释说明，只需要给出最终转换结果
- 转换结果紧跟在末尾的结果标记之后，结果之后不要输出任何内容`

type Example struct {
	Pinyin string
	Output string
}

var Examples = []Example{
	{Pinyin: "zhongguoren", Output: "中国人"},
	{Pinyin: "yidongdianhua", Output: "移动电话"},
	{Pinyin: "xianzai", Output: "现在"},
	{Pinyin: "hangkong", Output: "航空"},
	{Pinyin: "nihaoshijie", Output: "你好世界"},
	{Pinyin: "guangdongshenzhen", Output: "广东深圳"},
}

type Builder struct {
	Marker string
}

func New(marker string) *Builder {
	if strings.TrimSpace(marker) == "" {
		marker = DefaultMarker
	}
	return &Builder{Marker: marker}
}

// Build composes the conversion prompt. The output is a pure function of its
// arguments and ends with the marker line.
func (b *Builder) Build(pinyin, context string) string {
	var sb strings.Builder
	sb.WriteString(taskDescription)
	sb.WriteString("\n\n示例：\n")
	for _, ex := range Examples {
		fmt.Fprintf(&sb, "输入：%q\n输出：%q\n", ex.Pinyin, ex.Output)
	}

	sb.WriteString("\n上下文参考：\n")
	sb.WriteString(b.contextSection(context))
	sb.WriteString("\n\n待转换输入：\n")
	sb.WriteString(pinyin)
	sb.WriteString("\n\n")
	sb.WriteString(b.Marker)
	sb.WriteString("\n")
	return sb.String()
}

func (b *Builder) contextSection(context string) string {
	if strings.TrimSpace(context) == "" {
		return emptyContextPlaceholder
	}
	// Removing one marker can join its neighbours into another, as in
	// "[[转换结果]]". The replacement is shorter than the marker, so this ends.
	replacement := neutralize(b.Marker)
	for b.Marker != "" && strings.Contains(context, b.Marker) {
		context = strings.ReplaceAll(context, b.Marker, replacement)
	}
	return context
}

func neutralize(marker string) string {
	trimmed := strings.Trim(marker, "[]【】<>")
	if trimmed == marker {
		return ""
	}
	return trimmed
}
