// Package classifier maps free-form lot locations to canonical Mexican state names.
//
// CharModel is a small nearest-neighbour model over character bigram sets. Inputs are
// lower-cased, stripped of accents, whitespace and punctuation, then compared by cosine
// similarity with every labelled example. The label of the closest example wins;
// ties go to the example listed first. The default training set is embedded from
// data/estados.csv and lists each state with its abbreviations and main cities.
//
// The classifier is applied after reconciliation to the location of every lot, so it
// never influences which lots match.
//
// # Usage
//
//	model, err := classifier.Default()
//	labels, err := model.Predict(ctx, []string{"Monterrey, Nuevo León"})
package classifier
