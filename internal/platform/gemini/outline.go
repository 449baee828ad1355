package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/luocheng/bidwriter/internal/domain"
	"github.com/luocheng/bidwriter/internal/generation"
)

// The outline targets roughly a hundred thousand words of prose at
// about fifteen hundred words per leaf section.
const (
	expectedWordCount = 100000
	wordsPerLeaf      = 1500
)

// GenerateOutline produces the full proposal outline. Level-1 chapter
// titles are derived from the scoring requirements in a single
// JSON-checked call; each chapter's level-2/3 structure is then
// expanded sequentially so only one request is in flight at a time.
func (g *Generator) GenerateOutline(ctx context.Context, overview, requirements string) (*domain.Outline, error) {
	if strings.TrimSpace(overview) == "" {
		return nil, domain.ErrEmptyOverview
	}

	titles, err := g.generateTitles(ctx, overview, requirements)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "level-1 outline generated", "chapters", len(titles))

	leafBudget := expectedWordCount / wordsPerLeaf
	first, second := domain.EmphasisIndexes(len(titles), g.rng)
	distribution := domain.DistributeLeaves(len(titles), first, second, leafBudget)

	outline := &domain.Outline{}
	for i, title := range titles {
		g.logger.InfoContext(ctx, "expanding chapter outline",
			"chapter", i+1,
			"total", len(titles),
			"title", title.NewTitle)

		chapter, err := g.expandChapter(ctx, i, titles, distribution[i], overview, requirements)
		if err != nil {
			// Failed chapters become placeholders so the rest of the
			// outline survives.
			g.logger.ErrorContext(ctx, "chapter expansion failed",
				"chapter", i+1,
				"error", err)
			chapter = &domain.Chapter{
				ID:          fmt.Sprintf("chapter_%d", i+1),
				Title:       title.NewTitle + " (生成失败)",
				Description: "章节生成失败: " + err.Error(),
				Error:       err.Error(),
			}
		}
		outline.Chapters = append(outline.Chapters, chapter)
	}

	return outline, nil
}

// generateTitles asks for one level-1 chapter per scoring requirement.
func (g *Generator) generateTitles(ctx context.Context, overview, requirements string) ([]levelOneTitle, error) {
	prompt, err := renderTemplate(titlesUserTmpl, titlesPromptData{
		Overview:     overview,
		Requirements: requirements,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render titles prompt: %w", err)
	}

	content, err := g.generateChecked(ctx, titlesSystemPrompt, prompt, levelOneSchema, false)
	if err != nil {
		return nil, err
	}

	var titles []levelOneTitle
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &titles); err != nil {
		return nil, fmt.Errorf("%w: failed to parse level-1 titles: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: no level-1 titles generated", generation.ErrInvalidResponse)
	}
	return titles, nil
}

// expandChapter fills in the level-2/3 structure of one level-1
// chapter. The model is handed a fixed skeleton whose node counts come
// from the leaf distribution and must complete titles and descriptions
// in place.
func (g *Generator) expandChapter(
	ctx context.Context,
	i int,
	titles []levelOneTitle,
	leaves int,
	overview, requirements string,
) (*domain.Chapter, error) {
	skeleton, err := domain.SkeletonJSON(titles[i].NewTitle, i+1, leaves)
	if err != nil {
		return nil, err
	}

	system, err := renderTemplate(chapterSystemTmpl, chapterPromptData{Skeleton: skeleton})
	if err != nil {
		return nil, fmt.Errorf("failed to render chapter system prompt: %w", err)
	}
	prompt, err := renderTemplate(chapterUserTmpl, chapterPromptData{
		Overview:     overview,
		Requirements: requirements,
		OtherOutline: otherTitles(titles, i),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render chapter prompt: %w", err)
	}

	// Fail-soft: after the validation budget is spent the last response
	// is still parsed, matching how a partially wrong structure is more
	// useful than no chapter at all.
	content, err := g.generateChecked(ctx, system, prompt, skeleton, true)
	if err != nil {
		return nil, err
	}

	var chapter domain.Chapter
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &chapter); err != nil {
		return nil, fmt.Errorf("%w: failed to parse chapter outline: %v",
			generation.ErrInvalidResponse, err)
	}

	// The model is forbidden from renaming the chapter; restore the id
	// in case it drifted anyway.
	chapter.ID = fmt.Sprintf("chapter_%d", i+1)
	return &chapter, nil
}
