package internal

// Version is the markanki release version.
const Version = "0.4.0"
