package internal

// Version is the translink release version
const Version = "0.3.1"
