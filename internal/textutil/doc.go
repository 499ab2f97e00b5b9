// Package textutil holds the small text conventions shared by exported
// artifacts: display titles derived from run identifiers and the float
// spelling used in value dumps.
package textutil
