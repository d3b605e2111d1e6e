// Package section models the fixed-layout sections of a DEX file: the
// 112-byte header and the map list. Both serialize to and parse from
// their wire form; parsing exists for tests and round-trip checks, the
// writer only emits.
package section
