package docstore

// Batch accumulates mutations for one atomic commit. It is handed to the
// body of Store.PerformBatch and must not be retained or used concurrently
// after the body returns.
type Batch struct {
	mutations []Mutation
}

// Set queues a full-document write. An empty id asks the store to assign one.
func (b *Batch) Set(collection, id string, data map[string]any) {
	b.mutations = append(b.mutations, Mutation{
		Kind:       MutationSet,
		Collection: collection,
		ID:         id,
		Data:       data,
	})
}

// Update queues a field merge into an existing document.
func (b *Batch) Update(collection, id string, fields map[string]any) {
	b.mutations = append(b.mutations, Mutation{
		Kind:       MutationUpdate,
		Collection: collection,
		ID:         id,
		Fields:     fields,
	})
}

// Delete queues a document removal.
func (b *Batch) Delete(collection, id string) {
	b.mutations = append(b.mutations, Mutation{
		Kind:       MutationDelete,
		Collection: collection,
		ID:         id,
	})
}

// Len reports how many mutations are queued.
func (b *Batch) Len() int { return len(b.mutations) }
