package catalog

import (
	"context"
	"errors"

	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
	"github.com/iraklijanashvili/Ecommerce-sub000/retry"
)

// ProductsCollection is where the catalog lives in the document store.
const ProductsCollection = "products"

// RemoteSource reads products straight from a document remote. It carries
// no cache of its own; the Repository in front of it owns caching, so the
// catalog path holds exactly one cached copy of each product.
type RemoteSource struct {
	remote docstore.Remote
	codec  docstore.JSONCodec[Product]
	retry  retry.Policy
}

// NewRemoteSource wraps remote with the given retry policy for reads.
func NewRemoteSource(remote docstore.Remote, policy retry.Policy) *RemoteSource {
	if policy.MaxAttempts == 0 && policy.InitialDelay == 0 {
		policy = retry.Default()
	}
	return &RemoteSource{remote: remote, retry: policy}
}

func (s *RemoteSource) Product(ctx context.Context, id string) (Product, error) {
	doc, err := retry.DoValue(ctx, s.retry, func(ctx context.Context) (docstore.Document, error) {
		d, err := s.remote.Get(ctx, ProductsCollection, id)
		if errors.Is(err, docstore.ErrNotFound) {
			return d, retry.Permanent(err)
		}
		return d, err
	})
	if err != nil {
		return Product{}, err
	}
	p, err := s.codec.Decode(doc)
	if err != nil {
		return Product{}, &docstore.DecodeError{Collection: ProductsCollection, ID: doc.ID, Err: err}
	}
	return p, nil
}

func (s *RemoteSource) ProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	docs, err := retry.DoValue(ctx, s.retry, func(ctx context.Context) ([]docstore.Document, error) {
		return s.remote.Query(ctx, ProductsCollection, "category", category)
	})
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(docs))
	for _, doc := range docs {
		p, err := s.codec.Decode(doc)
		if err != nil {
			return nil, &docstore.DecodeError{Collection: ProductsCollection, ID: doc.ID, Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}
