// Package interactive holds the terminal review of pruning decisions. It
// lists every package of a document with what pruning would do to it and
// lets the user flip removals before they are saved to a removal list.
package interactive
