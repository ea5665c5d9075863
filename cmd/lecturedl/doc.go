// Command lecturedl downloads recorded lectures from an Echo360 ESS course.
//
// The download command signs in through a headless Chrome session, lists the
// course's recordings, and runs one rtmpdump process per recording. Other
// commands manage configuration, stored credentials, dependency checks, and
// the run history kept in the state directory.
package main
