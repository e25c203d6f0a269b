// Package blocking decides which road crossings into a safety perimeter
// need a physical blockade.
//
// The decision runs in three stages over one [network.Graph]:
//
//  1. [Label] classifies every edge against the perimeter and the danger
//     zone, and stores crossing edges in (inner, outer) order.
//  2. [Audit] filters crossings that are not load-bearing: either no
//     intruder entering there could reach the danger zone before meeting
//     another blockade, or nobody can plausibly arrive from outside.
//  3. [PlaceMarkers] derives junction labels from the surviving crossings
//     and moves danger markers onto the perimeter boundary where the
//     junction itself is no longer a meaningful anchor.
//
// The graph is mutated in place and owned by the caller for the whole run;
// stages must be called in order.
package blocking
