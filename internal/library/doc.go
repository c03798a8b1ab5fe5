// Package library defines the media-library domain types shared by the
// REST client, the collection loaders and the UI.
//
// # Types
//
//   - Library: the scope of every collection fetch (a book or podcast library)
//   - Audiobook, Series, Podcast: collection elements
//   - AudiobookSortOrder, SeriesSortOrder: server-side sort criteria
//   - NoOrder: order key for collections without a sort criterion (podcasts)
//
// Sort orders carry both a stable identifier (persisted in prefs and accepted
// on the command line) and the query value sent to the server. They are kept
// separate so the server's field paths never leak into user configuration.
package library
