package constants

// facegate response codes
// these are 4 digit numbers surfaced to the kiosk UI alongside the HTTP status
//
// the 1st 3 digits identify the scenario
// 4th indicates if the kiosk should offer a retry dialog. 0 means it should not. 1 means it should.

var ACCESS_GRANTED uint = 2000
var ACCESS_DENIED_NO_MATCH uint = 4030      // unknown face, log and stay locked
var ACCESS_DENIED_SPOOF uint = 4041         // spoof suspected, offer retry with a live face
var VERIFICATION_UNUSABLE_IMAGE uint = 4221 // no face or crop too small, offer retry
var IDENTITY_ENROLLED uint = 2010
var IDENTITY_DUPLICATE uint = 4090 // already enrolled under another name
var MODELS_LOADING uint = 5031     // models not ready yet, retry shortly

var MAX_IMAGE_BYTES int64 = 15 << 20

var SUPPORT_EMAIL = "support@facegate.io"
