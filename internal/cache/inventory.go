package cache

// DashboardKey holds the serialized platform dashboard.
const DashboardKey = "dashboard:v1"
