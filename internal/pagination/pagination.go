// Package pagination режет упорядоченную последовательность на страницы
// фиксированного размера. Номер страницы приходит извне и не валидируется
// вызывающим: выход за границы всегда прижимается к первой или последней
// странице, ошибки нет.
package pagination

// PerPage - размер страницы для всех лент
const PerPage = 10

// Page - метаданные одной страницы
type Page struct {
	Number   int  `json:"number"`
	NumPages int  `json:"numPages"`
	HasNext  bool `json:"hasNext"`
	HasPrev  bool `json:"hasPrev"`

	// Offset/Limit для передачи в хранилище
	Offset int `json:"-"`
	Limit  int `json:"-"`
}

type Paginator struct {
	total   int
	perPage int
}

func New(total, perPage int) Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}
	return Paginator{total: total, perPage: perPage}
}

// NumPages считает число страниц. Пустая последовательность - одна
// пустая страница, а не ноль
func (p Paginator) NumPages() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.perPage - 1) / p.perPage
}

// Pick прижимает номер страницы к допустимому диапазону и возвращает
// её метаданные
func (p Paginator) Pick(n int) Page {
	numPages := p.NumPages()
	if n < 1 {
		n = 1
	}
	if n > numPages {
		n = numPages
	}
	return Page{
		Number:   n,
		NumPages: numPages,
		HasNext:  n < numPages,
		HasPrev:  n > 1,
		Offset:   (n - 1) * p.perPage,
		Limit:    p.perPage,
	}
}

// Paginate режет уже материализованную последовательность. Используется
// in-memory хранилищем и тестами; у PostgreSQL вместо этого LIMIT/OFFSET
func Paginate[T any](items []T, n, perPage int) ([]T, Page) {
	page := New(len(items), perPage).Pick(n)
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	if page.Offset >= len(items) {
		return []T{}, page
	}
	return items[page.Offset:end], page
}
