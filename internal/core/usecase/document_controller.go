package usecase

import (
	"fmt"
	"real-estate-system/internal/core/domain"
	"sync"
)

// DocumentController держит историю документа и выбранную для показа версию.
// Пока выбрана последняя версия, выбор следует за новыми версиями;
// если пользователь ушел в историю, новые версии его не сдвигают.
type DocumentController struct {
	mu       sync.RWMutex
	doc      *domain.Document
	selected int
}

// NewDocumentController выбирает последнюю версию документа
func NewDocumentController(doc *domain.Document) *DocumentController {
	selected := doc.Count() - 1
	if selected < 0 {
		selected = 0
	}
	return &DocumentController{doc: doc, selected: selected}
}

// Append принимает следующую версию; индекс должен быть равен текущему числу версий
func (c *DocumentController) Append(v domain.DocumentVersion) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := c.doc.Count()
	followLatest := count == 0 || c.selected == count-1

	if err := c.doc.AppendVersion(v); err != nil {
		return fmt.Errorf("got version %d, expected %d: %w", v.VersionIndex, count, err)
	}
	if followLatest {
		c.selected = v.VersionIndex
	}
	return nil
}

// Current - выбранная версия
func (c *DocumentController) Current() (domain.DocumentVersion, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.doc.Count() == 0 {
		return domain.DocumentVersion{}, domain.ErrEmptyDocument
	}
	return c.doc.Version(c.selected)
}

// Navigate сдвигает выбор на одну версию. На краях истории ничего не делает.
func (c *DocumentController) Navigate(direction domain.NavigationDirection) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch direction {
	case domain.NavigatePrev:
		if c.selected > 0 {
			c.selected--
		}
	case domain.NavigateNext:
		if c.selected < c.doc.Count()-1 {
			c.selected++
		}
	}
	return c.selected
}

// Select выбирает версию по индексу
func (c *DocumentController) Select(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= c.doc.Count() {
		return domain.ErrVersionOutOfRange
	}
	c.selected = index
	return nil
}

func (c *DocumentController) VersionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc.Count()
}

func (c *DocumentController) SelectedIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// IsCurrentVersion - выбрана ли последняя версия
func (c *DocumentController) IsCurrentVersion() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected == c.doc.Count()-1 || c.doc.Count() == 0
}
