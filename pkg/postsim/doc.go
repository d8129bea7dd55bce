// Package postsim applies post-simulation processing to a binned spectrum:
// line-broadening apodization along a chosen dimension and overall scaling.
package postsim
