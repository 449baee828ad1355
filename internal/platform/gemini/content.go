package gemini

import (
	"context"

	"github.com/luocheng/bidwriter/internal/domain"
)

// GenerateContent fills every leaf chapter of the outline with
// generated prose, walking the tree in document order so there is only
// ever one request in flight. Per-section failures are recorded on the
// chapter and do not abort the run; cancellation does.
func (g *Generator) GenerateContent(ctx context.Context, outline *domain.Outline, overview string) (*domain.Outline, error) {
	if err := outline.Validate(); err != nil {
		return nil, err
	}

	result, err := outline.Clone()
	if err != nil {
		return nil, err
	}

	total := result.CountLeaves()
	g.logger.InfoContext(ctx, "starting content generation",
		"chapters", len(result.Chapters),
		"leaf_sections", total)

	done := 0
	if err := g.fillChapters(ctx, result.Chapters, nil, overview, &done, total); err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "content generation finished", "leaf_sections", total)
	return result, nil
}

// fillChapters walks the chapter list recursively, generating prose for
// leaves and descending into branches.
func (g *Generator) fillChapters(
	ctx context.Context,
	chapters []*domain.Chapter,
	parents []*domain.Chapter,
	overview string,
	done *int,
	total int,
) error {
	for _, chapter := range chapters {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !chapter.IsLeaf() {
			lineage := append(append([]*domain.Chapter{}, parents...), chapter)
			if err := g.fillChapters(ctx, chapter.Children, lineage, overview, done, total); err != nil {
				return err
			}
			continue
		}

		*done++
		g.logger.InfoContext(ctx, "generating section content",
			"section", *done,
			"total", total,
			"title", chapter.Title)

		prompt := buildSectionPrompt(chapter, parents, chapters, overview)
		text, err := g.generateWithRetry(ctx, sectionSystemPrompt, prompt, false)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.logger.ErrorContext(ctx, "section content generation failed",
				"section", *done,
				"title", chapter.Title,
				"error", err)
			chapter.Error = err.Error()
			chapter.Content = "[内容生成失败: " + err.Error() + "]"
			continue
		}

		chapter.Content = text
	}
	return nil
}
