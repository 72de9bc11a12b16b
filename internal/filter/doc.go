// Package filter implements the image filter language.
//
// # Syntax
//
// A query is a single line of text:
//
//   - Comma-separated glob patterns must all match: "cat, *.jpg" keeps
//     images that have a tag equal to cat and a tag ending in .jpg.
//   - Each "!(pattern)" group excludes images with any tag matching the
//     glob pattern: "cat !(outdoor*)".
//   - The letters OR anywhere in the query switch to exact alternatives:
//     "cat OR dog" keeps images tagged exactly cat or exactly dog.
//   - A blank query keeps every image.
//
// Glob patterns follow shell rules: * matches any run of characters, ?
// matches one, and [...] / [!...] match a character class. A ] right
// after the opening bracket is a member, a - before the closing bracket
// is literal, and a [ with no closing bracket matches itself.
//
// # Known Limitations
//
// OR queries compare terms exactly and ignore !(...) groups, while the
// comma form uses globs and honors them. There is no escaping, so tags
// containing commas, parentheses or the word OR cannot be expressed.
// OR is found as a substring, so a tag such as FLOOR or ORANGE turns the
// query into an OR query split inside the tag: "ORANGE" has the single
// term ANGE.
// Malformed input never fails; it degrades to whatever patterns remain.
package filter
