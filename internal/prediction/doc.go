// Package prediction wraps the trained sale price model.
//
// A model artifact is a JSON document holding the preprocessing parameters
// (numeric standardization and one-hot vocabularies) and a gradient boosted
// tree ensemble. Load validates the artifact once; the resulting Model is
// read-only and shared by all requests.
//
// Predict returns the model output unchanged. Explain adds a path based
// additive attribution whose base value and contributions sum exactly to the
// prediction. Attribution failures wrap ErrAttributionUnavailable so the
// caller can still show the price.
package prediction
