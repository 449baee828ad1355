package gemini

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/luocheng/bidwriter/internal/config"
	"github.com/luocheng/bidwriter/internal/domain"
	"github.com/luocheng/bidwriter/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewGenerator_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := NewGenerator(ctx, nil, config.LLMConfig{APIKey: "k", ModelName: "m"})
		assert.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Parallel()
		_, err := NewGenerator(ctx, testLogger(), config.LLMConfig{ModelName: "m"})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("missing model name", func(t *testing.T) {
		t.Parallel()
		_, err := NewGenerator(ctx, testLogger(), config.LLMConfig{APIKey: "k"})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}

func TestSetModel(t *testing.T) {
	t.Parallel()

	g := &Generator{logger: testLogger(), model: "gemini-2.0-flash"}

	g.SetModel("gemini-2.0-pro")
	assert.Equal(t, "gemini-2.0-pro", g.Model())

	// Empty names are ignored.
	g.SetModel("")
	assert.Equal(t, "gemini-2.0-pro", g.Model())
}

func TestRenderTitlesPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := renderTemplate(titlesUserTmpl, titlesPromptData{
		Overview:     "智慧园区建设项目",
		Requirements: "1. 技术方案 2. 实施计划",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "智慧园区建设项目")
	assert.Contains(t, prompt, "<requirements>")
	assert.Contains(t, prompt, "1. 技术方案 2. 实施计划")
}

func TestRenderChapterPrompts(t *testing.T) {
	t.Parallel()

	skeleton, err := domain.SkeletonJSON("技术方案", 1, 6)
	require.NoError(t, err)

	system, err := renderTemplate(chapterSystemTmpl, chapterPromptData{Skeleton: skeleton})
	require.NoError(t, err)
	assert.Contains(t, system, `"chapter_1"`)
	assert.Contains(t, system, "禁止修改json结构")

	prompt, err := renderTemplate(chapterUserTmpl, chapterPromptData{
		Overview:     "项目概述",
		Requirements: "评分要求",
		OtherOutline: "实施计划\n售后服务",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "<other_outline>")
	assert.Contains(t, prompt, "售后服务")
}

func TestBuildSectionPrompt(t *testing.T) {
	t.Parallel()

	current := &domain.Chapter{ID: "chapter_1.2.1", Title: "数据处理", Description: "数据接入与清洗"}
	parents := []*domain.Chapter{
		{ID: "chapter_1", Title: "技术方案", Description: "总体技术方案"},
		{ID: "chapter_1.2", Title: "关键技术", Description: "核心技术说明"},
	}
	siblings := []*domain.Chapter{
		current,
		{ID: "chapter_1.2.2", Title: "系统集成", Description: "集成方式"},
	}

	prompt := buildSectionPrompt(current, parents, siblings, "园区项目概述")

	assert.Contains(t, prompt, "园区项目概述")
	assert.Contains(t, prompt, "chapter_1 技术方案")
	assert.Contains(t, prompt, "chapter_1.2 关键技术")
	assert.Contains(t, prompt, "chapter_1.2.2 系统集成")
	assert.Contains(t, prompt, "章节ID: chapter_1.2.1")

	// The current chapter must not list itself as a sibling.
	assert.Equal(t, 1, strings.Count(prompt, "chapter_1.2.1"))
}

func TestBuildSectionPrompt_NoContext(t *testing.T) {
	t.Parallel()

	current := &domain.Chapter{ID: "chapter_2", Title: "实施计划"}
	prompt := buildSectionPrompt(current, nil, []*domain.Chapter{current}, "")

	assert.NotContains(t, prompt, "上级章节信息")
	assert.NotContains(t, prompt, "同级章节信息")
	assert.NotContains(t, prompt, "项目概述信息")
	assert.Contains(t, prompt, "章节标题: 实施计划")
}

func TestOtherTitles(t *testing.T) {
	t.Parallel()

	titles := []levelOneTitle{
		{RatingItem: "a", NewTitle: "技术方案"},
		{RatingItem: "b", NewTitle: "实施计划"},
		{RatingItem: "c", NewTitle: "售后服务"},
	}

	got := otherTitles(titles, 1)
	assert.NotContains(t, got, "实施计划")
	assert.Contains(t, got, "技术方案")
	assert.Contains(t, got, "售后服务")
}
