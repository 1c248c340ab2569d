// Package flocking moves a population of boids under the classic separation,
// alignment and cohesion rules.
//
// Every tick rebuilds a BVH over the current positions, computes one steering
// force per agent in parallel (read-only access to the population, one output
// slot per agent), then updates headings and positions sequentially.
// Agents always travel at MaxSpeed: steering only changes their heading.
package flocking
