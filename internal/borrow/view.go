// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"maps"
	"slices"
	"sync"
)

// View is the list of active borrows one screen shows. Records returned
// through the view disappear from it and stay gone even if the backend
// still lists them on the next load.
type View struct {
	// returning serializes returns so a duplicate waits for the first to settle.
	returning sync.Mutex

	mu            sync.Mutex
	records       []*Record
	returned      map[int64]struct{}
	returnedBooks map[int64]struct{}
}

// NewView creates an empty view.
func NewView() *View {
	return &View{
		returned:      make(map[int64]struct{}),
		returnedBooks: make(map[int64]struct{}),
	}
}

// Replace loads fresh records into the view, dropping those already returned.
// Return markers the backend no longer lists are discarded.
func (view *View) Replace(records []*Record) []*Record {
	view.mu.Lock()
	defer view.mu.Unlock()

	listed := make(map[int64]struct{}, len(records))
	listedBooks := make(map[int64]struct{}, len(records))

	kept := make([]*Record, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		listed[record.ID] = struct{}{}
		listedBooks[record.bookID()] = struct{}{}
		if _, gone := view.returned[record.ID]; gone {
			continue
		}
		// A new borrow of a book returned earlier makes that book returnable again.
		delete(view.returnedBooks, record.bookID())
		kept = append(kept, record)
	}

	maps.DeleteFunc(view.returned, func(id int64, _ struct{}) bool {
		_, still := listed[id]
		return !still
	})
	maps.DeleteFunc(view.returnedBooks, func(bookID int64, _ struct{}) bool {
		_, still := listedBooks[bookID]
		return !still
	})

	view.records = kept
	return slices.Clone(kept)
}

// Records returns a copy of the records currently shown.
func (view *View) Records() []*Record {
	view.mu.Lock()
	defer view.mu.Unlock()
	return slices.Clone(view.records)
}

// Add shows a freshly confirmed borrow.
func (view *View) Add(record *Record) {
	view.mu.Lock()
	defer view.mu.Unlock()

	delete(view.returnedBooks, record.bookID())
	view.records = append(view.records, record)
}

func (view *View) byID(id int64) (*Record, bool) {
	view.mu.Lock()
	defer view.mu.Unlock()

	index := slices.IndexFunc(view.records, func(record *Record) bool { return record.ID == id })
	if index < 0 {
		_, gone := view.returned[id]
		return nil, gone
	}
	return view.records[index], false
}

func (view *View) byBook(bookID int64) (*Record, bool) {
	view.mu.Lock()
	defer view.mu.Unlock()

	index := slices.IndexFunc(view.records, func(record *Record) bool { return record.bookID() == bookID })
	if index < 0 {
		_, gone := view.returnedBooks[bookID]
		return nil, gone
	}
	return view.records[index], false
}

// settle removes the record and remembers it as returned.
func (view *View) settle(recordID, bookID int64) {
	view.mu.Lock()
	defer view.mu.Unlock()

	view.records = slices.DeleteFunc(view.records, func(record *Record) bool {
		return (recordID != 0 && record.ID == recordID) || (recordID == 0 && record.bookID() == bookID)
	})
	if recordID != 0 {
		view.returned[recordID] = struct{}{}
	}
	if bookID != 0 {
		view.returnedBooks[bookID] = struct{}{}
	}
}
