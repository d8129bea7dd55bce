// Package orientation provides the weighted crystallite orientations used for
// powder averaging.
//
// Grids follow the octahedral (ASG) scheme and cover an octant, a hemisphere
// or the full sphere. Node weights always sum to one, so a powder average is
// a plain weighted sum over nodes.
package orientation
