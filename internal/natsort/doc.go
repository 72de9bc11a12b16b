// Package natsort orders names so that embedded numbers compare by value:
// "img2.png" sorts before "img10.png".
//
// A name is split on runs of decimal digits from any script. Digit runs
// become numeric tokens of arbitrary length, compared by value, and the
// remaining runs become lowercased text tokens.
// Keys are compared token by token.
package natsort
