package client

// Version is the build version of the driver.
const Version = "0.9.0"
