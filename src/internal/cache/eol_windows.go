package cache

// LineSeparator is the native line ending used between artifact lines.
const LineSeparator = "\r\n"
