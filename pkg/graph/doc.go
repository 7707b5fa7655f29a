// Package graph defines the scene graph for Lathe.
// The scene graph is an immutable DAG of shapes, transforms and groups.
// Shapes are surfaces of revolution; transforms place their children;
// groups collect children without changing them. Flattened by the
// tessellator, it becomes a list of {shape, transform, material} draw items.
package graph
