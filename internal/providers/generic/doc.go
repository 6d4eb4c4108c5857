// Package generic implements a providers.Strategy for sites without a
// dedicated scraper. Chapter links are found by keyword and number
// heuristics on the index page; chapter text is taken from the largest
// content block on the chapter page.
package generic
