package domain

// PostFilter is the filter tree accepted by post listings. Empty fields match
// everything; OR/AND nest further filters.
type PostFilter struct {
	IDIn           []string        `json:"id_in,omitempty"`
	Author         *AuthorFilter   `json:"author,omitempty"`
	AuthorNot      *AuthorFilter   `json:"author_not,omitempty"`
	Pinned         *bool           `json:"pinned,omitempty"`
	LanguageIn     []string        `json:"language_in,omitempty"`
	CategoriesSome *CategoryFilter `json:"categories_some,omitempty"`
	OR             []PostFilter    `json:"OR,omitempty"`
	AND            []PostFilter    `json:"AND,omitempty"`
}

type AuthorFilter struct {
	ID   *string  `json:"id,omitempty"`
	IDIn []string `json:"id_in,omitempty"`
}

type CategoryFilter struct {
	IDIn []string `json:"id_in,omitempty"`
}

func (f PostFilter) IsEmpty() bool {
	return len(f.IDIn) == 0 &&
		f.Author.isEmpty() &&
		f.AuthorNot.isEmpty() &&
		f.Pinned == nil &&
		len(f.LanguageIn) == 0 &&
		(f.CategoriesSome == nil || len(f.CategoriesSome.IDIn) == 0) &&
		len(f.OR) == 0 &&
		len(f.AND) == 0
}

func (a *AuthorFilter) isEmpty() bool {
	return a == nil || (a.ID == nil && len(a.IDIn) == 0)
}

// MergePostFilters deep-merges src into dst. Slices are concatenated rather
// than replaced, scalars from src win.
func MergePostFilters(dst, src PostFilter) PostFilter {
	out := dst
	out.IDIn = concat(dst.IDIn, src.IDIn)
	out.Author = mergeAuthor(dst.Author, src.Author)
	out.AuthorNot = mergeAuthor(dst.AuthorNot, src.AuthorNot)
	if src.Pinned != nil {
		out.Pinned = src.Pinned
	}
	out.LanguageIn = concat(dst.LanguageIn, src.LanguageIn)
	if src.CategoriesSome != nil {
		merged := &CategoryFilter{}
		if dst.CategoriesSome != nil {
			merged.IDIn = concat(merged.IDIn, dst.CategoriesSome.IDIn)
		}
		merged.IDIn = concat(merged.IDIn, src.CategoriesSome.IDIn)
		out.CategoriesSome = merged
	}
	out.OR = concat(dst.OR, src.OR)
	out.AND = concat(dst.AND, src.AND)
	return out
}

// WithPinned unions the pinned post into whatever f selects.
func WithPinned(f PostFilter) PostFilter {
	pinned := true
	return PostFilter{OR: []PostFilter{{Pinned: &pinned}, f}}
}

func mergeAuthor(dst, src *AuthorFilter) *AuthorFilter {
	if src == nil {
		return dst
	}
	out := &AuthorFilter{}
	if dst != nil {
		out.ID = dst.ID
		out.IDIn = concat(out.IDIn, dst.IDIn)
	}
	if src.ID != nil {
		out.ID = src.ID
	}
	out.IDIn = concat(out.IDIn, src.IDIn)
	return out
}

func concat[T any](a, b []T) []T {
	if len(b) == 0 {
		return a
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
