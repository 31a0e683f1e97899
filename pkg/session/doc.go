/*
Package session keeps live page trees between requests and serializes access
to each of them.

Component trees and activators are not safe for concurrent use, so every
request against a page runs under that page's lock. Requests against
different pages proceed in parallel.
*/
package session
