package storage

import (
	"fmt"

	"github.com/dsnet/golib/memfile"

	"github.com/finchdb/finchdb/internal/record"
)

// PageSize is the heap page size in bytes. Rows never straddle a page
// boundary; a row larger than a page is rejected.
const PageSize = 4096

// RowID identifies a row within a heap file by insertion ordinal.
type RowID int64

// HeapFile stores encoded rows in fixed-size pages over an in-memory file.
// Block counts reported here are what table statistics and the cost model
// see as the table's size on disk.
type HeapFile struct {
	schema   *record.Schema
	file     *memfile.File
	offsets  []int64
	pages    int64
	pageUsed int
}

func NewHeapFile(schema *record.Schema) *HeapFile {
	return &HeapFile{
		schema: schema,
		file:   memfile.New(nil),
	}
}

// Append encodes and stores a row, returning its RowID.
func (h *HeapFile) Append(row record.Row) (RowID, error) {
	buf, err := encodeRow(h.schema, row)
	if err != nil {
		return 0, err
	}
	if len(buf) > PageSize {
		return 0, fmt.Errorf("row of %d bytes exceeds page size", len(buf))
	}
	if h.pages == 0 || h.pageUsed+len(buf) > PageSize {
		h.pages++
		h.pageUsed = 0
	}
	off := (h.pages-1)*PageSize + int64(h.pageUsed)
	if _, err := h.file.WriteAt(buf, off); err != nil {
		return 0, err
	}
	h.pageUsed += len(buf)
	h.offsets = append(h.offsets, off)
	return RowID(len(h.offsets) - 1), nil
}

// Get fetches a single row by id.
func (h *HeapFile) Get(id RowID) (record.Row, error) {
	if id < 0 || int(id) >= len(h.offsets) {
		return nil, fmt.Errorf("row %d out of range", id)
	}
	off := h.offsets[id]
	end := (off/PageSize + 1) * PageSize
	buf := make([]byte, end-off)
	n, _ := h.file.ReadAt(buf, off)
	row, _, err := decodeRow(h.schema, buf[:n])
	return row, err
}

// Scan visits every row in insertion order. The visitor returns false to
// stop early.
func (h *HeapFile) Scan(visit func(RowID, record.Row) (bool, error)) error {
	for i := range h.offsets {
		row, err := h.Get(RowID(i))
		if err != nil {
			return err
		}
		cont, err := visit(RowID(i), row)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// NumRows returns the number of rows stored.
func (h *HeapFile) NumRows() int64 {
	return int64(len(h.offsets))
}

// NumBlocks returns the number of pages occupied.
func (h *HeapFile) NumBlocks() int64 {
	return h.pages
}
