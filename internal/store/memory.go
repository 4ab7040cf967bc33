package store

import (
	"sort"
	"sync"

	"vkazakov/fintrack/internal/models"
)

// MemoryStore is an in-memory TransactionStore used in tests and dry runs.
type MemoryStore struct {
	mu sync.RWMutex
	// keyed by card id, then document id
	byCard map[string]map[string]models.Transaction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byCard: make(map[string]map[string]models.Transaction)}
}

// ListDocumentIDs returns the set of document ids stored for a card.
func (s *MemoryStore) ListDocumentIDs(cardID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]bool, len(s.byCard[cardID]))
	for docID := range s.byCard[cardID] {
		ids[docID] = true
	}
	return ids, nil
}

// ListByCard returns all stored transactions for a card, oldest first.
func (s *MemoryStore) ListByCard(cardID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transactions := make([]models.Transaction, 0, len(s.byCard[cardID]))
	for _, tx := range s.byCard[cardID] {
		transactions = append(transactions, tx)
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})
	return transactions, nil
}

// BulkInsert stores new transactions as-is.
func (s *MemoryStore) BulkInsert(transactions []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range transactions {
		card := s.byCard[tx.CardID]
		if card == nil {
			card = make(map[string]models.Transaction)
			s.byCard[tx.CardID] = card
		}
		card[tx.DocumentID] = tx
	}
	return nil
}

// BulkUpdate overwrites statement-derived fields of existing records while
// keeping classification fields from the stored copy.
func (s *MemoryStore) BulkUpdate(cardID string, transactions []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card := s.byCard[cardID]
	for _, incoming := range transactions {
		stored, ok := card[incoming.DocumentID]
		if !ok {
			continue
		}
		stored.Date = incoming.Date
		stored.PostedDate = incoming.PostedDate
		stored.Amount = incoming.Amount
		stored.Currency = incoming.Currency
		stored.DescriptionRaw = incoming.DescriptionRaw
		stored.MerchantRaw = incoming.MerchantRaw
		stored.MerchantNorm = incoming.MerchantNorm
		stored.CardLast4 = incoming.CardLast4
		stored.TxType = incoming.TxType
		stored.IsTransfer = incoming.IsTransfer
		stored.LinkedTransactionID = incoming.LinkedTransactionID
		card[incoming.DocumentID] = stored
	}
	return nil
}

// ReplaceAll clears a card's transactions and stores the given set.
func (s *MemoryStore) ReplaceAll(cardID string, transactions []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card := make(map[string]models.Transaction, len(transactions))
	for _, tx := range transactions {
		card[tx.DocumentID] = tx
	}
	s.byCard[cardID] = card
	return nil
}

// Clear removes every transaction for a card.
func (s *MemoryStore) Clear(cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byCard, cardID)
	return nil
}
