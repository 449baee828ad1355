package domain

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Outline is the hierarchical table of contents for a bid proposal.
// Level-1 chapters correspond one-to-one with the tender's scoring
// requirements; leaf chapters are the sections that receive generated
// prose.
type Outline struct {
	Chapters []*Chapter `json:"outline"`
}

// Chapter is one node of the outline tree. Content is only ever set on
// leaf chapters. Error records a per-chapter generation failure without
// failing the whole document.
type Chapter struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Children    []*Chapter `json:"children,omitempty"`
	Content     string     `json:"content,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// IsLeaf reports whether the chapter has no children.
func (c *Chapter) IsLeaf() bool {
	return len(c.Children) == 0
}

// Validate checks that the outline is structurally usable for content
// generation.
func (o *Outline) Validate() error {
	if o == nil || len(o.Chapters) == 0 {
		return ErrEmptyOutline
	}
	return validateChapters(o.Chapters)
}

func validateChapters(chapters []*Chapter) error {
	for _, c := range chapters {
		if c.Title == "" {
			return fmt.Errorf("%w: chapter %q", ErrMissingChapterTitle, c.ID)
		}
		if err := validateChapters(c.Children); err != nil {
			return err
		}
	}
	return nil
}

// CountLeaves returns the number of leaf chapters in the outline.
func (o *Outline) CountLeaves() int {
	return countLeaves(o.Chapters)
}

func countLeaves(chapters []*Chapter) int {
	count := 0
	for _, c := range chapters {
		if c.IsLeaf() {
			count++
		} else {
			count += countLeaves(c.Children)
		}
	}
	return count
}

// Clone returns a deep copy of the outline so content generation never
// mutates the caller's structure.
func (o *Outline) Clone() (*Outline, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to clone outline: %w", err)
	}
	var clone Outline
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("failed to clone outline: %w", err)
	}
	return &clone, nil
}

// EmphasisIndexes picks two distinct chapter indexes to emphasize.
// Emphasized chapters receive a double share of the leaf budget so the
// finished document weights its strongest scoring items. With fewer
// than two chapters the same index may be returned twice.
func EmphasisIndexes(n int, rng *rand.Rand) (int, int) {
	if n <= 1 {
		return 0, 0
	}
	first := rng.Intn(n)
	second := rng.Intn(n - 1)
	if second >= first {
		second++
	}
	return first, second
}

// DistributeLeaves splits a total leaf-section budget across n chapters
// proportionally to their weight: emphasized chapters count double,
// every chapter gets at least one leaf, and any remainder goes to the
// emphasized chapters.
func DistributeLeaves(n, first, second, total int) []int {
	if n <= 0 {
		return nil
	}

	weights := make([]int, n)
	totalWeight := 0
	for i := range weights {
		w := 1
		if i == first || i == second {
			w = 2
		}
		weights[i] = w
		totalWeight += w
	}

	counts := make([]int, n)
	assigned := 0
	for i := range counts {
		c := total * weights[i] / totalWeight
		if c < 1 {
			c = 1
		}
		counts[i] = c
		assigned += c
	}

	for i := 0; assigned < total; i++ {
		idx := first
		if i%2 == 1 {
			idx = second
		}
		counts[idx]++
		assigned++
	}

	return counts
}

// SkeletonJSON renders the outline skeleton for one level-1 chapter as
// indented JSON. The model is asked to fill in titles and descriptions
// on this exact structure, so the skeleton fixes the chapter's id, its
// title, and the number of level-2/level-3 nodes up front.
func SkeletonJSON(title string, num, leaves int) (string, error) {
	if leaves < 1 {
		leaves = 1
	}

	// Group leaves into level-2 sections of at most four each.
	const leavesPerSection = 4
	sections := (leaves + leavesPerSection - 1) / leavesPerSection

	chapter := &Chapter{
		ID:    fmt.Sprintf("chapter_%d", num),
		Title: title,
	}

	remaining := leaves
	for s := 1; s <= sections; s++ {
		take := (remaining + sections - s) / (sections - s + 1)
		section := &Chapter{
			ID: fmt.Sprintf("chapter_%d.%d", num, s),
		}
		for l := 1; l <= take; l++ {
			section.Children = append(section.Children, &Chapter{
				ID: fmt.Sprintf("chapter_%d.%d.%d", num, s, l),
			})
		}
		chapter.Children = append(chapter.Children, section)
		remaining -= take
	}

	data, err := json.MarshalIndent(chapter, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render outline skeleton: %w", err)
	}
	return string(data), nil
}
