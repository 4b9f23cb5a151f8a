package translation

import (
	"fmt"
	"strings"
)

// Delimiter separates the three fields of a model response.
const Delimiter = "||"

// Record is one English source row.
type Record struct {
	Name        string
	Category    string
	Description string
}

// Empty reports whether all three fields are blank.
func (r Record) Empty() bool {
	return r.Name == "" && r.Category == "" && r.Description == ""
}

// Triple is a parsed translation.
type Triple struct {
	Name        string
	Category    string
	Description string
}

// ParseError reports a response that is not exactly three delimited fields.
type ParseError struct {
	Response string
	Parts    int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected 3 fields separated by %q, got %d in response %q", Delimiter, e.Parts, e.Response)
}

// ParseResponse splits a model answer into its three fields. Empty fields
// are accepted.
func ParseResponse(text string) (Triple, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, Delimiter)
	if len(parts) != 3 {
		return Triple{}, &ParseError{Response: text, Parts: len(parts)}
	}
	return Triple{
		Name:        strings.TrimSpace(parts[0]),
		Category:    strings.TrimSpace(parts[1]),
		Description: strings.TrimSpace(parts[2]),
	}, nil
}

const promptTemplate = `你是专业的医药翻译助手，请把下面的英文药品信息翻译成简体中文，并严格遵守以下要求。

【术语】
- 使用简体中文，术语以《中国药典》为准，表述准确专业。
- 剂型统一使用标准译名，例如"片剂"、"胶囊"、"凝胶"、"乳膏"。
- 规格单位换算为法定计量单位，例如"克"、"毫克"、"毫升"；浓度保留数字写法，例如 0.05%%。
- 药品名称包含多个规格或变体时，合并为一个连续的字符串。

【输出】
- 只输出一行：中文药品名称 %[1]s 中文药瓶类型 %[1]s 中文药品描述
- 恰好三个部分，用 %[1]s 分隔，不得省略分隔符。
- 不要输出标题、编号、解释或换行。

【无法翻译时】
- 保留英文原词，并在其后标注[待确认]。
- 不得编造任何信息。

【示例】
输入：
药品名称: A Ret 0.05%% Gel 20gmA Ret 0.1%% Gel 20gm
药瓶类型: Acne
药品描述: A RET 0.05%% is a prescription medicine that is used to reduce fine wrinkles
输出：
维A酸 0.05%% 凝胶 20克 维A酸 0.1%% 凝胶 20克 %[1]s 痤疮治疗用 %[1]s 维A酸0.05%%凝胶为处方药，用于改善细纹

【待翻译内容】
药品名称: %[2]s
药瓶类型: %[3]s
药品描述: %[4]s
`

// BuildPrompt embeds the record verbatim into the translation instructions.
func BuildPrompt(r Record) string {
	return fmt.Sprintf(promptTemplate, Delimiter, r.Name, r.Category, r.Description)
}
