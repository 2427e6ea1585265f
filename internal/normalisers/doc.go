// Package normalisers provides PageExtractor implementations that turn
// uploaded files into page texts. Each extractor handles a set of MIME types.
package normalisers
