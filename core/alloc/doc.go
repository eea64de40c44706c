// Package alloc implements the fulfillment allocation engine: a greedy,
// deterministic splitter that decides which vehicles serve which restock
// requests, how a request's demand is split across vehicles, and what
// capacity remains afterwards.
//
// The engine is greedy per request, not globally optimal: requests are served
// strictly in priority order and each request consumes the largest available
// vehicles first. Priority correctness outranks space utilization, so the
// engine never reorders requests for packing efficiency.
package alloc
