// Package chart renders a market's price history to an image file with gonum/plot.
package chart
