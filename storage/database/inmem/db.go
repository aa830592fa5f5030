// Package inmemdb is a process-local record store used for development and tests.
package inmemdb

import (
	"sync"

	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/user"
)

type (
	DB struct {
		mutex sync.RWMutex

		profiles     map[string]*gateway.Profile
		applications []*gateway.Application // insertion order
		documents    []*gateway.Document
		universities []*gateway.University
		courses      []*gateway.Course
		messages     []*gateway.Message
		users        map[string]*user.User
	}
)

func Open() *DB {
	return &DB{
		profiles: make(map[string]*gateway.Profile),
		users:    make(map[string]*user.User),
	}
}

// Messages returns a copy of the stored messages.
func (db *DB) Messages() []gateway.Message {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	msgs := make([]gateway.Message, 0, len(db.messages))
	for _, m := range db.messages {
		msgs = append(msgs, *m)
	}
	return msgs
}

// AddDocument attaches a document to an application (the consultant side of the workflow).
func (db *DB) AddDocument(doc gateway.Document) gateway.Document {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	doc.ID = newID()
	db.documents = append(db.documents, &doc)
	return doc
}

// SetApplicationStatus moves an application through its lifecycle (consultant side).
func (db *DB) SetApplicationStatus(id string, status gateway.ApplicationStatus) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for _, app := range db.applications {
		if app.ID == id {
			app.Status = status
			return nil
		}
	}
	return gateway.ErrNotFound
}
