// Package solar turns the solar-data response into today's sunrise and
// sunset as local instants.
//
// The vendor reports times as 12-hour strings such as "5:22:11 PM" with no
// date or zone. ToLocalInstant attaches them to a reference calendar date in
// the configured location and refuses wall-clock values that fall into a
// daylight-saving gap or fold instead of guessing.
package solar
