package internal

// Version is the medtrans release reported by --version.
const Version = "0.3.0"
