package server

// indexHTML is the built-in chat client served at the root path. It speaks
// the same envelope protocol as any other client and exists purely as a
// convenience for trying the relay out in a browser.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Driftchat</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; display: flex; gap: 20px; }
        #chat { flex: 1; }
        #sidebar { width: 200px; }
        #messages {
            border: 1px solid #ccc;
            height: 360px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        #users { border: 1px solid #ccc; padding: 10px; background-color: #f9f9f9; }
        #typing { color: gray; font-style: italic; min-height: 1.2em; }
        input[type="text"] { width: 300px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:hover { background-color: #005a87; }
        .meta { color: gray; font-style: italic; }
        .msg strong { color: #005a87; }
    </style>
</head>
<body>
    <div id="chat">
        <h1>Driftchat</h1>
        <div>
            <input type="text" id="usernameInput" placeholder="Username...">
            <button id="joinButton" onclick="join()">Join</button>
        </div>
        <div id="messages"></div>
        <div id="typing"></div>
        <div>
            <input type="text" id="messageInput" placeholder="Type a message..." disabled>
            <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
        </div>
    </div>
    <div id="sidebar">
        <h3>Online <span id="userCount">0</span></h3>
        <div id="users"></div>
    </div>

    <script>
        let ws = null;
        let typingTimer = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const typingDiv = document.getElementById('typing');
        const typingUsers = new Set();

        function emit(event, data) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({event: event, data: data || {}}));
            }
        }

        function addLine(html, cls) {
            const el = document.createElement('div');
            el.className = cls || 'msg';
            el.innerHTML = html;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function esc(s) {
            const el = document.createElement('span');
            el.textContent = s || '';
            return el.innerHTML;
        }

        function renderTyping() {
            const names = Array.from(typingUsers);
            typingDiv.textContent = names.length ? names.join(', ') + ' typing…' : '';
        }

        function join() {
            const username = document.getElementById('usernameInput').value.trim();
            if (!username) return;

            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(proto + location.host + '/ws');

            ws.onopen = function() { emit('join', {username: username}); };
            ws.onclose = function() {
                addLine('Disconnected', 'meta');
                messageInput.disabled = true;
                document.getElementById('sendButton').disabled = true;
                ws = null;
            };
            ws.onmessage = function(e) {
                const frame = JSON.parse(e.data);
                const data = frame.data || {};
                switch (frame.event) {
                case 'connected':
                    addLine('Joined as ' + esc(data.username), 'meta');
                    messageInput.disabled = false;
                    document.getElementById('sendButton').disabled = false;
                    break;
                case 'user-joined':
                    addLine(esc(data.username) + ' joined', 'meta');
                    break;
                case 'user-left':
                    addLine(esc(data.username) + ' left', 'meta');
                    typingUsers.delete(data.username);
                    renderTyping();
                    break;
                case 'users-update':
                    document.getElementById('userCount').textContent = data.count;
                    document.getElementById('users').innerHTML =
                        (data.users || []).map(u => esc(u.username)).join('<br>');
                    break;
                case 'message':
                    let line = '<strong>' + esc(data.username) + ':</strong> ' + esc(data.text);
                    (data.files || []).forEach(f => { line += ' <em>[' + esc(f.name) + ']</em>'; });
                    addLine(line);
                    typingUsers.delete(data.username);
                    renderTyping();
                    break;
                case 'user-typing':
                    if (data.isTyping) { typingUsers.add(data.username); }
                    else { typingUsers.delete(data.username); }
                    renderTyping();
                    break;
                }
            };
        }

        function sendMessage() {
            const text = messageInput.value.trim();
            if (!text) return;
            emit('message', {text: text});
            emit('stop-typing');
            messageInput.value = '';
        }

        messageInput.addEventListener('input', function() {
            emit('typing');
            clearTimeout(typingTimer);
            typingTimer = setTimeout(() => emit('stop-typing'), 1500);
        });
        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') sendMessage();
        });
    </script>
</body>
</html>`
