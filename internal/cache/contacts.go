package cache

import (
	"encoding/json/v2"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/notivo/notivo-server/internal/domain"
)

const contactsPrefix = "contacts:"

// ContactsDocument is one user's cached view of everyone else: the set of
// users a note can be shared with.
type ContactsDocument struct {
	UserID      string           `json:"userId"`
	Contacts    []domain.Contact `json:"contacts"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

func contactsKey(userID string) []byte {
	return []byte(contactsPrefix + userID)
}

// StoreContacts replaces a user's cached contact list.
func (c *Cache) StoreContacts(userID string, contacts []domain.Contact) error {
	doc := &ContactsDocument{UserID: userID, Contacts: contacts, LastUpdated: c.now().UTC()}
	return c.set(contactsKey(userID), doc, 0)
}

// LookupContacts returns a user's cached contact list, or ok=false on a
// miss.
func (c *Cache) LookupContacts(userID string) (*ContactsDocument, bool, error) {
	var doc ContactsDocument
	found, err := c.get(contactsKey(userID), &doc)
	if err != nil || !found {
		return nil, false, err
	}
	return &doc, true, nil
}

// AppendContact adds a contact to one user's cached list if it is not
// already there. A missing document is left missing so the next read
// rebuilds it.
func (c *Cache) AppendContact(userID string, contact domain.Contact) error {
	key := contactsKey(userID)
	return c.update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var doc ContactsDocument
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return err
		}

		for _, existing := range doc.Contacts {
			if existing.ID == contact.ID {
				return nil
			}
		}
		doc.Contacts = append(doc.Contacts, contact)
		doc.LastUpdated = c.now().UTC()

		data, err := json.Marshal(&doc)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}
