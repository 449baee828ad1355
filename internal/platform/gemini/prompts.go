package gemini

import (
	"strings"
	"text/template"

	"github.com/luocheng/bidwriter/internal/domain"
)

// levelOneSchema is the output shape requested for the level-1 outline:
// one entry per scoring requirement, with a reworded chapter title.
const levelOneSchema = `[{"rating_item": "原评分项", "new_title": "根据评分项修改的标题"}]`

// titlesSystemPrompt asks for level-1 chapter titles, one per scoring
// requirement, with titles reworded rather than copied verbatim.
const titlesSystemPrompt = `### 角色
你是专业的标书编写专家，擅长根据项目需求编写标书。

### 任务
1. 根据得到的项目概述(overview)和评分要求(requirements)，撰写技术标部分的一级提纲

### 说明
1. 只设计一级标题，数量要和"评分要求"一一对应
2. 一级标题名称要进行简单修改，不能完全使用"评分要求"中的文字

### Output Format in JSON
` + levelOneSchema

// sectionSystemPrompt governs the prose style of generated sections.
const sectionSystemPrompt = `你是一个专业的标书编写专家，负责为投标文件的技术标部分生成具体内容。

要求：
1. 内容要专业、准确，与章节标题和描述保持一致
2. 这是技术方案，不是宣传报告，注意朴实无华，不要假大空
3. 语言要正式、规范，符合标书写作要求，但不要使用奇怪的连接词，不要让人觉得内容像是AI生成的
4. 内容要详细具体，避免空泛的描述
5. 注意避免与同级章节内容重复，保持内容的独特性和互补性
6. 直接返回章节内容，不生成标题，不要任何额外说明或格式标记`

var (
	titlesUserTmpl = template.Must(template.New("titles_user").Parse(`### 项目信息

<overview>
{{.Overview}}
</overview>

<requirements>
{{.Requirements}}
</requirements>

直接返回json，不要任何额外说明或格式标记
`))

	chapterSystemTmpl = template.Must(template.New("chapter_system").Parse(`### 角色
你是专业的标书编写专家，擅长根据项目需求编写标书。

### 任务
1. 根据得到项目概述(overview)、评分要求(requirements)补全标书提纲的二三级目录

### 说明
1. 你将会得到一段json，这是提纲的其中一个章节，你需要在原结构上补全标题(title)和描述(description)
2. 二级标题根据一级标题撰写，三级标题根据二级标题撰写
3. 补全的内容要参考项目概述(overview)、评分要求(requirements)等项目信息
4. 你还会收到其他章节的标题(other_outline)，你需要确保本章节的内容不会包含其他章节的内容

### 注意事项
在原json上补全信息，禁止修改json结构，禁止修改一级标题

### Output Format in JSON
{{.Skeleton}}
`))

	chapterUserTmpl = template.Must(template.New("chapter_user").Parse(`### 项目信息

<overview>
{{.Overview}}
</overview>

<requirements>
{{.Requirements}}
</requirements>

<other_outline>
{{.OtherOutline}}
</other_outline>

直接返回json，不要任何额外说明或格式标记
`))
)

type titlesPromptData struct {
	Overview     string
	Requirements string
}

type chapterPromptData struct {
	Skeleton     string
	Overview     string
	Requirements string
	OtherOutline string
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// buildSectionPrompt assembles the user prompt for one leaf section,
// giving the model the chapter hierarchy above it and its sibling
// chapters so the generated prose stays in place and avoids repeating
// neighboring sections.
func buildSectionPrompt(
	chapter *domain.Chapter,
	parents []*domain.Chapter,
	siblings []*domain.Chapter,
	overview string,
) string {
	var b strings.Builder

	b.WriteString("请为以下标书章节生成具体内容：\n\n")

	if strings.TrimSpace(overview) != "" {
		b.WriteString("项目概述信息：\n")
		b.WriteString(overview)
		b.WriteString("\n\n")
	}

	if len(parents) > 0 {
		b.WriteString("上级章节信息：\n")
		for _, p := range parents {
			b.WriteString("- " + p.ID + " " + p.Title + "\n  " + p.Description + "\n")
		}
	}

	siblingCount := 0
	for _, s := range siblings {
		if s.ID != chapter.ID {
			siblingCount++
		}
	}
	if siblingCount > 0 {
		b.WriteString("同级章节信息（请避免内容重复）：\n")
		for _, s := range siblings {
			if s.ID == chapter.ID {
				continue
			}
			b.WriteString("- " + s.ID + " " + s.Title + "\n  " + s.Description + "\n")
		}
	}

	b.WriteString("当前章节信息：\n")
	b.WriteString("章节ID: " + chapter.ID + "\n")
	b.WriteString("章节标题: " + chapter.Title + "\n")
	b.WriteString("章节描述: " + chapter.Description + "\n\n")
	b.WriteString("请根据项目概述信息和上述章节层级关系，生成详细的专业内容，" +
		"确保与上级章节的内容逻辑相承，同时避免与同级章节内容重复，" +
		"突出本章节的独特性和技术方案的优势。")

	return b.String()
}

// otherTitles renders the titles of every level-1 chapter except the
// one at index i, used to keep chapter expansions from overlapping.
func otherTitles(titles []levelOneTitle, i int) string {
	var lines []string
	for j, t := range titles {
		if j == i {
			continue
		}
		lines = append(lines, strings.TrimSpace(t.NewTitle))
	}
	return strings.Join(lines, "\n")
}
