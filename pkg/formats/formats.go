// Package formats reads and writes the JSON shape format: a tree of named
// elements with cuboid bounds, textured faces, attachment points and
// keyframe animations.
//
// Shape files in the wild are hand-edited, so the parser tolerates trailing
// commas. Output is always strict JSON.
package formats
