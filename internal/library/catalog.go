package library

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Categories returns the tag categories ordered by SortOrder, then name.
func (s *Store) Categories() []TagCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cats := slices.Clone(s.index.Categories)
	sortCategories(cats)
	return cats
}

// Tags returns the catalog tags in insertion order.
func (s *Store) Tags() []Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.index.Tags)
}

// AvailableTags lists the tag names offered for filtering. In categorized
// mode they follow category order; in flat mode they are drawn from items.
func (s *Store) AvailableTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch scheme := s.index.Scheme().(type) {
	case CategorizedTags:
		order := make(map[string]int, len(scheme.Categories))
		cats := slices.Clone(scheme.Categories)
		sortCategories(cats)
		for i, c := range cats {
			order[c.ID] = i
		}
		tags := slices.Clone(scheme.Tags)
		rank := func(t Tag) int {
			if r, ok := order[t.CategoryID]; ok {
				return r
			}
			return len(cats) // orphans last
		}
		slices.SortStableFunc(tags, func(a, b Tag) int {
			if c := cmp.Compare(rank(a), rank(b)); c != 0 {
				return c
			}
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = t.Name
		}
		return names
	case LegacyFlatTags:
		names := scheme.Names
		for _, legacy := range s.index.AvailableTags {
			if !containsFold(names, legacy) {
				names = append(names, legacy)
			}
		}
		slices.SortFunc(names, func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		})
		return names
	}
	return nil
}

// AddCategory creates a category placed after the existing ones.
func (s *Store) AddCategory(name string) (TagCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TagCategory{}, fmt.Errorf("add category: empty name: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryByName(name) >= 0 {
		return TagCategory{}, fmt.Errorf("category %q already exists: %w", name, ErrInvalidArgument)
	}
	order := 0
	for _, c := range s.index.Categories {
		order = max(order, c.SortOrder+1)
	}
	cat := TagCategory{ID: uuid.NewString(), Name: name, SortOrder: order}
	s.index.Categories = append(s.index.Categories, cat)
	return cat, nil
}

// RenameCategory changes the display name of a category.
func (s *Store) RenameCategory(id, name string) error {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return fmt.Errorf("rename category: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("category %q: %w", id, ErrNotFound)
	}
	if j := s.categoryByName(name); j >= 0 && j != i {
		return fmt.Errorf("category %q already exists: %w", name, ErrInvalidArgument)
	}
	s.index.Categories[i].Name = name
	return nil
}

// DeleteCategory removes a category. Its tags stay in the catalog and are
// matched as uncategorized until moved.
func (s *Store) DeleteCategory(id string) error {
	if id == "" {
		return fmt.Errorf("delete category: empty id: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("category %q: %w", id, ErrNotFound)
	}
	s.index.Categories = slices.Delete(s.index.Categories, i, i+1)
	return nil
}

// AddTag adds a tag to the catalog under an existing category.
func (s *Store) AddTag(name, categoryID string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" || categoryID == "" {
		return Tag{}, fmt.Errorf("add tag: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryIndex(categoryID) < 0 {
		return Tag{}, fmt.Errorf("category %q: %w", categoryID, ErrNotFound)
	}
	if s.tagIndex(name) >= 0 {
		return Tag{}, fmt.Errorf("tag %q already exists: %w", name, ErrInvalidArgument)
	}
	tag := Tag{Name: name, CategoryID: categoryID}
	s.index.Tags = append(s.index.Tags, tag)
	return tag, nil
}

// MoveTag assigns a catalog tag to another category.
func (s *Store) MoveTag(name, categoryID string) error {
	if name == "" || categoryID == "" {
		return fmt.Errorf("move tag: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tagIndex(name)
	if i < 0 {
		return fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}
	if s.categoryIndex(categoryID) < 0 {
		return fmt.Errorf("category %q: %w", categoryID, ErrNotFound)
	}
	s.index.Tags[i].CategoryID = categoryID
	return nil
}

// RenameTag renames a tag in the catalog and on every item carrying it.
// Changing only the case of a name is allowed.
func (s *Store) RenameTag(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return fmt.Errorf("rename tag: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tagIndex(oldName)
	if j := s.tagIndex(newName); j >= 0 && j != i {
		return fmt.Errorf("tag %q already exists: %w", newName, ErrInvalidArgument)
	}
	found := i >= 0
	if found {
		s.index.Tags[i].Name = newName
	}
	for k := range s.index.Items {
		it := &s.index.Items[k]
		if !it.HasTag(oldName) {
			continue
		}
		found = true
		for n, t := range it.Tags {
			if strings.EqualFold(t, oldName) {
				it.Tags[n] = newName
			}
		}
		it.Tags = normalizeTags(it.Tags)
	}
	if !found {
		return fmt.Errorf("tag %q: %w", oldName, ErrNotFound)
	}
	return nil
}

// DeleteTag removes a tag from the catalog and from every item.
func (s *Store) DeleteTag(name string) error {
	if name == "" {
		return fmt.Errorf("delete tag: empty name: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	if i := s.tagIndex(name); i >= 0 {
		s.index.Tags = slices.Delete(s.index.Tags, i, i+1)
		found = true
	}
	for k := range s.index.Items {
		it := &s.index.Items[k]
		if it.HasTag(name) {
			it.Tags = removeTag(it.Tags, name)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}
	return nil
}

// Lookup helpers expect s.mu to be held.

func (s *Store) categoryIndex(id string) int {
	return slices.IndexFunc(s.index.Categories, func(c TagCategory) bool { return c.ID == id })
}

func (s *Store) categoryByName(name string) int {
	return slices.IndexFunc(s.index.Categories, func(c TagCategory) bool {
		return strings.EqualFold(c.Name, name)
	})
}

func (s *Store) tagIndex(name string) int {
	return slices.IndexFunc(s.index.Tags, func(t Tag) bool { return strings.EqualFold(t.Name, name) })
}

func sortCategories(cats []TagCategory) {
	slices.SortStableFunc(cats, func(a, b TagCategory) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

func containsFold(names []string, name string) bool {
	return slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, name) })
}
