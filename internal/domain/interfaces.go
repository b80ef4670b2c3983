package domain

// ReferenceProvider resolves the immutable, startup-loaded reference datasets.
type ReferenceProvider interface {
	Dataset(key DatasetKey) (*ReferenceDataset, error)
	Version() string
}
